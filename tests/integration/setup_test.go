package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	adaptershttp "github.com/mukwano/sacco/internal/adapter/http"
	"github.com/mukwano/sacco/internal/adapter/http/handler"
	"github.com/mukwano/sacco/internal/adapter/repository/postgres"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
	"github.com/mukwano/sacco/tests/testutil"
)

// newTestRouter wires the full HTTP stack against a live database with
// default domain configuration. Redis-backed pieces are left out so the
// suite only needs postgres.
func newTestRouter(t *testing.T, pool *pgxpool.Pool) http.Handler {
	t.Helper()

	calc := domain.NewInterestCalculator(domain.DefaultInterestConfig())
	scorer := domain.NewCreditScorer(domain.DefaultCreditScoreConfig())

	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier()
	memberRepo := postgres.NewMemberRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	repaymentRepo := postgres.NewRepaymentRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	idGen := postgres.NewULIDGenerator()

	memberUC := usecase.NewMemberUseCase(txManager, memberRepo, idGen, nil)
	accountUC := usecase.NewAccountUseCase(txManager, memberRepo, accountRepo, transactionRepo, idGen, nil)
	loanUC := usecase.NewLoanUseCase(
		txManager, retrier, memberRepo, accountRepo, loanRepo, repaymentRepo, transactionRepo,
		idGen, calc, domain.DefaultEligibilityConfig(), domain.DefaultLoanProductConfig(), nil,
	)
	interestUC := usecase.NewInterestUseCase(txManager, accountRepo, transactionRepo, idGen, calc)
	scoreUC := usecase.NewCreditScoreUseCase(memberRepo, accountRepo, loanRepo, repaymentRepo, transactionRepo, scorer, nil, nil)

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		MemberHandler:      handler.NewMemberHandler(memberUC),
		AccountHandler:     handler.NewAccountHandler(accountUC),
		LoanHandler:        handler.NewLoanHandler(loanUC),
		CreditScoreHandler: handler.NewCreditScoreHandler(scoreUC),
		SweepHandler:       handler.NewSweepHandler(interestUC, loanUC, scoreUC),
		HealthHandler:      handler.NewHealthHandler(pool, nil),
	})
}

func setupSuite(t *testing.T) (context.Context, *testutil.TestDB, http.Handler) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	return ctx, testDB, newTestRouter(t, testDB.Pool)
}

func newGetRequest(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decodeList(t *testing.T, data []byte) []any {
	t.Helper()

	var decoded []any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode list response %q: %v", string(data), err)
	}
	return decoded
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}
