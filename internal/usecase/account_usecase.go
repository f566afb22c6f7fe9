package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	memberRepo  MemberRepository
	accountRepo AccountRepository
	ledgerRepo  TransactionRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. The metrics argument
// may be nil, in which case no counters are recorded.
func NewAccountUseCase(
	txManager TransactionManager,
	memberRepo MemberRepository,
	accountRepo AccountRepository,
	ledgerRepo TransactionRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		memberRepo:  memberRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	MemberID   string
	Type       domain.AccountType
	TermMonths *int
}

// OpenAccount opens a new account for an active member.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	switch input.Type {
	case domain.AccountTypeSavings, domain.AccountTypeShares, domain.AccountTypeFixedDeposit:
	default:
		return nil, domain.ErrInvalidAccountType
	}

	member, err := uc.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberStatusActive {
		return nil, domain.ErrMemberNotActive
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		MemberID:       input.MemberID,
		Type:           input.Type,
		Status:         domain.AccountStatusActive,
		Balance:        decimal.Zero,
		InterestEarned: decimal.Zero,
		TermMonths:     input.TermMonths,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.WithLabelValues(string(account.Type)).Inc()
	}

	return account, nil
}

// MoveFundsInput represents a deposit or withdrawal.
type MoveFundsInput struct {
	AccountID string
	Amount    decimal.Decimal
	Reference string
}

// Deposit credits an account and writes the ledger entry, atomically.
func (uc *AccountUseCase) Deposit(ctx context.Context, input MoveFundsInput) (*domain.Transaction, error) {
	return uc.moveFunds(ctx, input, domain.TransactionTypeDeposit)
}

// Withdraw debits an account and writes the ledger entry, atomically.
// The balance may not go negative.
func (uc *AccountUseCase) Withdraw(ctx context.Context, input MoveFundsInput) (*domain.Transaction, error) {
	return uc.moveFunds(ctx, input, domain.TransactionTypeWithdrawal)
}

func (uc *AccountUseCase) moveFunds(ctx context.Context, input MoveFundsInput, txType domain.TransactionType) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status != domain.AccountStatusActive {
		return nil, domain.ErrAccountNotActive
	}

	before := account.Balance

	var newBalance decimal.Decimal
	switch txType {
	case domain.TransactionTypeDeposit:
		if err := account.ValidateDeposit(input.Amount); err != nil {
			return nil, err
		}
		newBalance = account.Balance.Add(input.Amount)
	case domain.TransactionTypeWithdrawal:
		if err := account.ValidateWithdrawal(input.Amount); err != nil {
			return nil, err
		}
		newBalance = account.Balance.Sub(input.Amount)
	default:
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		MemberID:      account.MemberID,
		AccountID:     &account.ID,
		Type:          txType,
		Amount:        input.Amount,
		BalanceBefore: before,
		BalanceAfter:  newBalance,
		Reference:     input.Reference,
		CreatedAt:     now,
	}

	if err := uc.ledgerRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		switch txType {
		case domain.TransactionTypeDeposit:
			uc.metrics.Deposits.Inc()
			uc.metrics.DepositAmount.Observe(input.Amount.InexactFloat64())
		case domain.TransactionTypeWithdrawal:
			uc.metrics.Withdrawals.Inc()
		}
	}

	return entry, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsByMember lists a member's accounts.
func (uc *AccountUseCase) ListAccountsByMember(ctx context.Context, memberID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByMember(ctx, memberID)
}

// ListTransactionsInput represents input for listing ledger entries.
type ListTransactionsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransactions lists an account's ledger entries.
func (uc *AccountUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.ledgerRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}
