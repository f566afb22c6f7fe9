package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, member_id, loan_number, principal, annual_rate, processing_fee, insurance_fee,
	period_months, monthly_payment, total_amount, outstanding_balance, status,
	approved_at, disbursed_at, completed_at, created_at, updated_at`

// Create inserts a new loan. The partial unique index on open loans
// per member surfaces here as ErrActiveLoanExists.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO loans (id, member_id, loan_number, principal, annual_rate, processing_fee, insurance_fee,
			period_months, monthly_payment, total_amount, outstanding_balance, status,
			approved_at, disbursed_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := pgxTx.Exec(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.LoanNumber,
		decimalToNumeric(loan.Principal),
		decimalToNumeric(loan.AnnualRate),
		decimalToNumeric(loan.ProcessingFee),
		decimalToNumeric(loan.InsuranceFee),
		loan.PeriodMonths,
		decimalToNumeric(loan.MonthlyPayment),
		decimalToNumeric(loan.TotalAmount),
		decimalToNumeric(loan.OutstandingBalance),
		loan.Status,
		timestamptzPtr(loan.ApprovedAt),
		timestamptzPtr(loan.DisbursedAt),
		timestamptzPtr(loan.CompletedAt),
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrActiveLoanExists
	}

	return err
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	return scanLoan(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	return scanLoan(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus persists a loan's status and lifecycle timestamps.
func (r *LoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE loans
		SET status = $2, approved_at = $3, disbursed_at = $4, completed_at = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		loan.ID,
		loan.Status,
		timestamptzPtr(loan.ApprovedAt),
		timestamptzPtr(loan.DisbursedAt),
		timestamptzPtr(loan.CompletedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// UpdateOutstanding persists the outstanding balance after a repayment,
// together with the status it may have moved to.
func (r *LoanRepository) UpdateOutstanding(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, completedAt *time.Time, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE loans
		SET outstanding_balance = $2, status = $3, completed_at = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id,
		decimalToNumeric(outstanding),
		status,
		timestamptzPtr(completedAt),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// ListByMember retrieves a member's loans, newest first.
func (r *LoanRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows)
}

// ListByStatus retrieves loans in the given status, oldest first so
// sweeps work through the backlog in order.
func (r *LoanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus, limit, offset int) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows)
}

// CountOpenByMember counts a member's pending, approved, active, and
// overdue loans.
func (r *LoanRepository) CountOpenByMember(ctx context.Context, memberID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loans
		WHERE member_id = $1 AND status = ANY($2)
	`

	statuses := make([]string, 0, len(domain.OpenLoanStatuses))
	for _, s := range domain.OpenLoanStatuses {
		statuses = append(statuses, string(s))
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, memberID, statuses).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// StatusCounts returns the number of the member's loans per status.
func (r *LoanRepository) StatusCounts(ctx context.Context, memberID string) (map[domain.LoanStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM loans
		WHERE member_id = $1
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LoanStatus]int)
	for rows.Next() {
		var (
			status domain.LoanStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan        domain.Loan
		principal   pgtype.Numeric
		annualRate  pgtype.Numeric
		procFee     pgtype.Numeric
		insFee      pgtype.Numeric
		monthly     pgtype.Numeric
		total       pgtype.Numeric
		outstanding pgtype.Numeric
	)
	err := row.Scan(
		&loan.ID,
		&loan.MemberID,
		&loan.LoanNumber,
		&principal,
		&annualRate,
		&procFee,
		&insFee,
		&loan.PeriodMonths,
		&monthly,
		&total,
		&outstanding,
		&loan.Status,
		&loan.ApprovedAt,
		&loan.DisbursedAt,
		&loan.CompletedAt,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}

	loan.Principal = numericToDecimal(principal)
	loan.AnnualRate = numericToDecimal(annualRate)
	loan.ProcessingFee = numericToDecimal(procFee)
	loan.InsuranceFee = numericToDecimal(insFee)
	loan.MonthlyPayment = numericToDecimal(monthly)
	loan.TotalAmount = numericToDecimal(total)
	loan.OutstandingBalance = numericToDecimal(outstanding)

	return &loan, nil
}

func collectLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	return loans, rows.Err()
}
