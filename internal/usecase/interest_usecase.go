package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
)

// InterestUseCase handles savings interest crediting and fixed-deposit
// projections.
type InterestUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  TransactionRepository
	idGen       IDGenerator
	calc        *domain.InterestCalculator
}

// NewInterestUseCase creates a new InterestUseCase.
func NewInterestUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	ledgerRepo TransactionRepository,
	idGen IDGenerator,
	calc *domain.InterestCalculator,
) *InterestUseCase {
	return &InterestUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		idGen:       idGen,
		calc:        calc,
	}
}

// AccountError records a per-account failure during the interest sweep.
type AccountError struct {
	AccountID string
	Err       error
}

// InterestSweepResult summarizes a daily interest crediting run.
type InterestSweepResult struct {
	Credited      int
	Skipped       int
	TotalInterest decimal.Decimal
	Errors        []AccountError
}

// CreditDailyInterest credits one day of interest to every active
// savings account with a positive balance. Each account is processed
// in its own transaction: a failure on one account is collected and
// the sweep moves on, so one bad row never rolls back the rest.
// Re-running within the same day is a no-op per account.
func (uc *InterestUseCase) CreditDailyInterest(ctx context.Context) (*InterestSweepResult, error) {
	accounts, err := uc.accountRepo.ListInterestBearing(ctx)
	if err != nil {
		return nil, err
	}

	result := &InterestSweepResult{TotalInterest: decimal.Zero}
	now := time.Now().UTC()

	for _, account := range accounts {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		credited, amount, err := uc.creditAccount(ctx, account.ID, now)
		if err != nil {
			result.Errors = append(result.Errors, AccountError{AccountID: account.ID, Err: err})
			continue
		}

		if !credited {
			result.Skipped++
			continue
		}

		result.Credited++
		result.TotalInterest = result.TotalInterest.Add(amount)
	}

	log.Info().
		Int("credited", result.Credited).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Str("total_interest", result.TotalInterest.String()).
		Msg("daily interest sweep finished")

	return result, nil
}

// creditAccount credits a single account inside its own transaction.
func (uc *InterestUseCase) creditAccount(ctx context.Context, accountID string, now time.Time) (bool, decimal.Decimal, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return false, decimal.Zero, err
	}

	// Re-checked under the lock: the account may have been emptied,
	// closed, or already credited since the listing.
	if !account.EarnsDailyInterest() || account.InterestCreditedOn(now) {
		return false, decimal.Zero, nil
	}

	interest := uc.calc.DailySavingsInterest(account.Balance)
	if !interest.IsPositive() {
		return false, decimal.Zero, nil
	}

	before := account.Balance
	newBalance := account.Balance.Add(interest)
	newEarned := account.InterestEarned.Add(interest)

	if err := uc.accountRepo.UpdateInterest(ctx, tx, account.ID, newBalance, newEarned, now); err != nil {
		return false, decimal.Zero, err
	}

	entry := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		MemberID:      account.MemberID,
		AccountID:     &account.ID,
		Type:          domain.TransactionTypeInterestCredit,
		Amount:        interest,
		BalanceBefore: before,
		BalanceAfter:  newBalance,
		Reference:     "daily savings interest",
		CreatedAt:     now,
	}

	if err := uc.ledgerRepo.Create(ctx, tx, entry); err != nil {
		return false, decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, decimal.Zero, err
	}

	return true, interest, nil
}

// FixedDepositProjection is a simple-interest projection for a term deposit.
type FixedDepositProjection struct {
	Principal  decimal.Decimal
	TermMonths int
	AnnualRate decimal.Decimal
	Interest   decimal.Decimal
	Maturity   decimal.Decimal
}

// ProjectFixedDeposit returns the interest a fixed deposit would earn
// over the given term using the tiered rate table.
func (uc *InterestUseCase) ProjectFixedDeposit(principal decimal.Decimal, termMonths int) (*FixedDepositProjection, error) {
	if err := domain.ValidateAmount(principal); err != nil {
		return nil, err
	}
	if termMonths <= 0 {
		return nil, domain.ErrInvalidPeriod
	}

	interest := uc.calc.FixedDepositInterest(principal, termMonths)

	return &FixedDepositProjection{
		Principal:  principal,
		TermMonths: termMonths,
		AnnualRate: uc.calc.FixedDepositRate(termMonths),
		Interest:   interest,
		Maturity:   principal.Add(interest),
	}, nil
}
