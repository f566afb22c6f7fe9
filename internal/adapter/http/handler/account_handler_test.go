package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

type accountServiceStub struct {
	openFn         func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn          func(ctx context.Context, id string) (*domain.Account, error)
	listByMemberFn func(ctx context.Context, memberID string) ([]*domain.Account, error)
	depositFn      func(ctx context.Context, input usecase.MoveFundsInput) (*domain.Transaction, error)
	withdrawFn     func(ctx context.Context, input usecase.MoveFundsInput) (*domain.Transaction, error)
	listTxFn       func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccountsByMember(ctx context.Context, memberID string) ([]*domain.Account, error) {
	return s.listByMemberFn(ctx, memberID)
}

func (s *accountServiceStub) Deposit(ctx context.Context, input usecase.MoveFundsInput) (*domain.Transaction, error) {
	return s.depositFn(ctx, input)
}

func (s *accountServiceStub) Withdraw(ctx context.Context, input usecase.MoveFundsInput) (*domain.Transaction, error) {
	return s.withdrawFn(ctx, input)
}

func (s *accountServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listTxFn(ctx, input)
}

func TestAccountHandler_Open_Success(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		MemberID: "m1",
		Type:     domain.AccountTypeSavings,
		Status:   domain.AccountStatusActive,
	}

	var captured usecase.OpenAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{
		MemberID: "m1",
		Type:     "savings",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.MemberID != "m1" || captured.Type != domain.AccountTypeSavings {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Open_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			t.Fatal("OpenAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Open_MemberNotActive(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			return nil, domain.ErrMemberNotActive
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{MemberID: "m1", Type: "savings"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	account := &domain.Account{ID: "acc-1", MemberID: "m1"}
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			if id != "acc-1" {
				t.Fatalf("expected id acc-1, got %s", id)
			}
			return account, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Deposit(t *testing.T) {
	entry := &domain.Transaction{
		ID:           "txn-1",
		MemberID:     "m1",
		Type:         domain.TransactionTypeDeposit,
		Amount:       decimal.NewFromInt(10000),
		BalanceAfter: decimal.NewFromInt(60000),
	}

	var captured usecase.MoveFundsInput
	handler := NewAccountHandler(&accountServiceStub{
		depositFn: func(ctx context.Context, input usecase.MoveFundsInput) (*domain.Transaction, error) {
			captured = input
			return entry, nil
		},
	})

	body, _ := json.Marshal(dto.MoveFundsRequest{
		Amount:    decimal.NewFromInt(10000),
		Reference: "cash deposit",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposits", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.AccountID != "acc-1" || !captured.Amount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected input to carry path account and amount, got %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.BalanceAfter.Equal(decimal.NewFromInt(60000)) {
		t.Fatalf("expected balance after 60000, got %s", resp.BalanceAfter)
	}
}

func TestAccountHandler_Withdraw_InsufficientFunds(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.MoveFundsInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.MoveFundsRequest{Amount: decimal.NewFromInt(999999)})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdrawals", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != domain.ErrInsufficientFunds.Error() {
		t.Fatalf("expected insufficient funds message, got %+v", resp)
	}
}

func TestAccountHandler_ListByMember(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listByMemberFn: func(ctx context.Context, memberID string) ([]*domain.Account, error) {
			if memberID != "m1" {
				t.Fatalf("expected member m1, got %s", memberID)
			}
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/members/m1/accounts", nil)
	req = setChiURLParam(req, "id", "m1")
	rec := httptest.NewRecorder()

	handler.ListByMember(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp))
	}
}

func TestAccountHandler_ListTransactions(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listTxFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			if input.AccountID != "acc-1" || input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected acc-1 limit=5 offset=2, got %+v", input)
			}
			return []*domain.Transaction{{ID: "txn-1"}, {ID: "txn-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/transactions?limit=5&offset=2", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
}

func TestAccountHandler_ListTransactions_ServiceError(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listTxFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			return nil, errors.New("db error")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/transactions", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListTransactions(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
