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

// TransactionRepository implements usecase.TransactionRepository. The
// transactions table is the append-only ledger: rows are only ever
// inserted, never updated or deleted.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, member_id, account_id, loan_id, type, amount, balance_before, balance_after, reference, created_at`

// Create appends a ledger entry inside a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO transactions (id, member_id, account_id, loan_id, type, amount, balance_before, balance_after, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.MemberID,
		entry.AccountID,
		entry.LoanID,
		entry.Type,
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.BalanceBefore),
		decimalToNumeric(entry.BalanceAfter),
		entry.Reference,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// ListByAccount retrieves an account's entries, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByMember retrieves a member's entries across all accounts and
// loans, newest first.
func (r *TransactionRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// CountByMemberSince counts a member's entries after the given time.
// Feeds the credit score's activity component.
func (r *TransactionRepository) CountByMemberSince(ctx context.Context, memberID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE member_id = $1 AND created_at > $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, memberID, timeToPgTimestamptz(since)).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		entry  domain.Transaction
		amount pgtype.Numeric
		before pgtype.Numeric
		after  pgtype.Numeric
	)
	err := row.Scan(
		&entry.ID,
		&entry.MemberID,
		&entry.AccountID,
		&entry.LoanID,
		&entry.Type,
		&amount,
		&before,
		&after,
		&entry.Reference,
		&entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.BalanceBefore = numericToDecimal(before)
	entry.BalanceAfter = numericToDecimal(after)

	return &entry, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var entries []*domain.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
