package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
)

// MemberRepository defines data access for members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Member, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.MemberStatus, approvedAt *time.Time, updatedAt time.Time) error
	UpdateCreditScore(ctx context.Context, id string, score int, updatedAt time.Time) error
	UpdateKYC(ctx context.Context, id string, verified bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Member, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateInterest(ctx context.Context, tx Transaction, id string, balance, interestEarned decimal.Decimal, creditedAt time.Time) error
	ListByMember(ctx context.Context, memberID string) ([]*domain.Account, error)
	ListInterestBearing(ctx context.Context) ([]*domain.Account, error)
	TotalSavings(ctx context.Context, memberID string) (decimal.Decimal, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	UpdateStatus(ctx context.Context, tx Transaction, loan *domain.Loan) error
	UpdateOutstanding(ctx context.Context, tx Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, completedAt *time.Time, updatedAt time.Time) error
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus, limit, offset int) ([]*domain.Loan, error)
	CountOpenByMember(ctx context.Context, memberID string) (int, error)
	StatusCounts(ctx context.Context, memberID string) (map[domain.LoanStatus]int, error)
}

// RepaymentRepository defines data access for repayment schedules.
type RepaymentRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, repayments []*domain.Repayment) error
	ExistsForLoan(ctx context.Context, tx Transaction, loanID string) (bool, error)
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Repayment, error)
	GetEarliestUnpaidForUpdate(ctx context.Context, tx Transaction, loanID string) (*domain.Repayment, error)
	UpdatePayment(ctx context.Context, tx Transaction, repayment *domain.Repayment) error
	LoanIDsWithPastDue(ctx context.Context, asOf time.Time) ([]string, error)
	EarliestUnpaidDueDate(ctx context.Context, loanID string) (*time.Time, error)
	Stats(ctx context.Context, memberID string) (total, onTime int, err error)
}

// TransactionRepository defines data access for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Transaction) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Transaction, error)
	CountByMemberSince(ctx context.Context, memberID string, since time.Time) (int, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
