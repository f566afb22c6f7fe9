package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, member_id, type, status, balance, interest_earned, last_interest_at, term_months, created_at, updated_at`

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, member_id, type, status, balance, interest_earned, last_interest_at, term_months, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.MemberID,
		account.Type,
		account.Status,
		decimalToNumeric(account.Balance),
		decimalToNumeric(account.InterestEarned),
		timestamptzPtr(account.LastInterestAt),
		account.TermMonths,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	return scanAccount(pgxTx.QueryRow(ctx, query, id))
}

// UpdateBalance sets an account's balance inside a transaction.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE accounts
		SET balance = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateInterest credits interest: balance, lifetime interest earned,
// and the crediting timestamp move together.
func (r *AccountRepository) UpdateInterest(ctx context.Context, tx usecase.Transaction, id string, balance, interestEarned decimal.Decimal, creditedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE accounts
		SET balance = $2, interest_earned = $3, last_interest_at = $4, updated_at = $4
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id,
		decimalToNumeric(balance),
		decimalToNumeric(interestEarned),
		timeToPgTimestamptz(creditedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ListByMember retrieves all of a member's accounts.
func (r *AccountRepository) ListByMember(ctx context.Context, memberID string) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE member_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListInterestBearing retrieves the accounts the daily interest sweep
// visits: active savings accounts with a positive balance.
func (r *AccountRepository) ListInterestBearing(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE type = $1 AND status = $2 AND balance > 0
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, domain.AccountTypeSavings, domain.AccountStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// TotalSavings sums a member's savings account balances.
func (r *AccountRepository) TotalSavings(ctx context.Context, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM accounts
		WHERE member_id = $1 AND type = $2
	`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, memberID, domain.AccountTypeSavings).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account        domain.Account
		balance        pgtype.Numeric
		interestEarned pgtype.Numeric
	)
	err := row.Scan(
		&account.ID,
		&account.MemberID,
		&account.Type,
		&account.Status,
		&balance,
		&interestEarned,
		&account.LastInterestAt,
		&account.TermMonths,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Balance = numericToDecimal(balance)
	account.InterestEarned = numericToDecimal(interestEarned)

	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}
