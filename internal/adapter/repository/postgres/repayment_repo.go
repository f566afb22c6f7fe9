package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// RepaymentRepository implements usecase.RepaymentRepository.
type RepaymentRepository struct {
	pool *pgxpool.Pool
}

// NewRepaymentRepository creates a new RepaymentRepository.
func NewRepaymentRepository(pool *pgxpool.Pool) *RepaymentRepository {
	return &RepaymentRepository{pool: pool}
}

const repaymentColumns = `id, loan_id, sequence, due_date, amount_due, principal_amount, interest_amount,
	penalty_amount, amount_paid, paid_at, status, created_at, updated_at`

// CreateBatch inserts a loan's full repayment schedule in one batch.
func (r *RepaymentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, repayments []*domain.Repayment) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO repayments (id, loan_id, sequence, due_date, amount_due, principal_amount, interest_amount,
			penalty_amount, amount_paid, paid_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	batch := &pgx.Batch{}
	for _, repayment := range repayments {
		batch.Queue(query,
			repayment.ID,
			repayment.LoanID,
			repayment.Sequence,
			timeToPgTimestamptz(repayment.DueDate),
			decimalToNumeric(repayment.AmountDue),
			decimalToNumeric(repayment.PrincipalAmount),
			decimalToNumeric(repayment.InterestAmount),
			decimalToNumeric(repayment.PenaltyAmount),
			decimalToNumeric(repayment.AmountPaid),
			timestamptzPtr(repayment.PaidAt),
			repayment.Status,
			timeToPgTimestamptz(repayment.CreatedAt),
			timeToPgTimestamptz(repayment.UpdatedAt),
		)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for range repayments {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// ExistsForLoan reports whether any schedule rows exist for the loan.
func (r *RepaymentRepository) ExistsForLoan(ctx context.Context, tx usecase.Transaction, loanID string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var exists bool
	err := pgxTx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM repayments WHERE loan_id = $1)`, loanID).Scan(&exists)

	return exists, err
}

// ListByLoan retrieves a loan's schedule in installment order.
func (r *RepaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Repayment, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE loan_id = $1
		ORDER BY sequence
	`

	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repayments []*domain.Repayment
	for rows.Next() {
		repayment, err := scanRepayment(rows)
		if err != nil {
			return nil, err
		}
		repayments = append(repayments, repayment)
	}

	return repayments, rows.Err()
}

// GetEarliestUnpaidForUpdate locks and returns the earliest installment
// that is not fully paid.
func (r *RepaymentRepository) GetEarliestUnpaidForUpdate(ctx context.Context, tx usecase.Transaction, loanID string) (*domain.Repayment, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE loan_id = $1 AND status <> $2
		ORDER BY sequence
		LIMIT 1
		FOR UPDATE
	`

	return scanRepayment(pgxTx.QueryRow(ctx, query, loanID, domain.RepaymentStatusPaid))
}

// UpdatePayment persists an installment's payment fields.
func (r *RepaymentRepository) UpdatePayment(ctx context.Context, tx usecase.Transaction, repayment *domain.Repayment) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE repayments
		SET penalty_amount = $2, amount_paid = $3, paid_at = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		repayment.ID,
		decimalToNumeric(repayment.PenaltyAmount),
		decimalToNumeric(repayment.AmountPaid),
		timestamptzPtr(repayment.PaidAt),
		repayment.Status,
		timeToPgTimestamptz(repayment.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRepaymentNotFound
	}

	return nil
}

// LoanIDsWithPastDue returns the distinct loans that have an unpaid
// installment due before asOf. Feeds the overdue sweep.
func (r *RepaymentRepository) LoanIDsWithPastDue(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT loan_id
		FROM repayments
		WHERE status <> $1 AND due_date < $2
		ORDER BY loan_id
	`

	rows, err := r.pool.Query(ctx, query, domain.RepaymentStatusPaid, timeToPgTimestamptz(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// EarliestUnpaidDueDate returns the due date of the loan's earliest
// unpaid installment, or nil when everything is paid.
func (r *RepaymentRepository) EarliestUnpaidDueDate(ctx context.Context, loanID string) (*time.Time, error) {
	query := `
		SELECT MIN(due_date)
		FROM repayments
		WHERE loan_id = $1 AND status <> $2
	`

	var due pgtype.Timestamptz
	if err := r.pool.QueryRow(ctx, query, loanID, domain.RepaymentStatusPaid).Scan(&due); err != nil {
		return nil, err
	}
	if !due.Valid {
		return nil, nil
	}

	return &due.Time, nil
}

// Stats returns a member's total settled installments and how many of
// them were paid by their due date. Feeds the credit score.
func (r *RepaymentRepository) Stats(ctx context.Context, memberID string) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE r.status = $2),
			COUNT(*) FILTER (WHERE r.status = $2 AND r.paid_at <= r.due_date)
		FROM repayments r
		JOIN loans l ON l.id = r.loan_id
		WHERE l.member_id = $1
	`

	var total, onTime int
	if err := r.pool.QueryRow(ctx, query, memberID, domain.RepaymentStatusPaid).Scan(&total, &onTime); err != nil {
		return 0, 0, err
	}

	return total, onTime, nil
}

func scanRepayment(row pgx.Row) (*domain.Repayment, error) {
	var (
		repayment domain.Repayment
		amountDue pgtype.Numeric
		principal pgtype.Numeric
		interest  pgtype.Numeric
		penalty   pgtype.Numeric
		paid      pgtype.Numeric
	)
	err := row.Scan(
		&repayment.ID,
		&repayment.LoanID,
		&repayment.Sequence,
		&repayment.DueDate,
		&amountDue,
		&principal,
		&interest,
		&penalty,
		&paid,
		&repayment.PaidAt,
		&repayment.Status,
		&repayment.CreatedAt,
		&repayment.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRepaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	repayment.AmountDue = numericToDecimal(amountDue)
	repayment.PrincipalAmount = numericToDecimal(principal)
	repayment.InterestAmount = numericToDecimal(interest)
	repayment.PenaltyAmount = numericToDecimal(penalty)
	repayment.AmountPaid = numericToDecimal(paid)

	return &repayment, nil
}
