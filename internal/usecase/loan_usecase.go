package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/infrastructure/metrics"
)

// LoanUseCase handles the loan eligibility gate and the loan lifecycle:
// application, approval, disbursement, repayment, and the overdue and
// default sweeps.
type LoanUseCase struct {
	txManager     TransactionManager
	retrier       Retrier
	memberRepo    MemberRepository
	accountRepo   AccountRepository
	loanRepo      LoanRepository
	repaymentRepo RepaymentRepository
	ledgerRepo    TransactionRepository
	idGen         IDGenerator
	calc          *domain.InterestCalculator
	eligibility   domain.EligibilityConfig
	product       domain.LoanProductConfig
	metrics       *metrics.Metrics
}

// NewLoanUseCase creates a new LoanUseCase. retrier may be nil to
// disable deadlock retries and metrics may be nil to disable counters.
func NewLoanUseCase(
	txManager TransactionManager,
	retrier Retrier,
	memberRepo MemberRepository,
	accountRepo AccountRepository,
	loanRepo LoanRepository,
	repaymentRepo RepaymentRepository,
	ledgerRepo TransactionRepository,
	idGen IDGenerator,
	calc *domain.InterestCalculator,
	eligibility domain.EligibilityConfig,
	product domain.LoanProductConfig,
	m *metrics.Metrics,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:     txManager,
		retrier:       retrier,
		memberRepo:    memberRepo,
		accountRepo:   accountRepo,
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		ledgerRepo:    ledgerRepo,
		idGen:         idGen,
		calc:          calc,
		eligibility:   eligibility,
		product:       product,
		metrics:       m,
	}
}

// CheckEligibility evaluates the loan eligibility criteria for a
// member and a requested amount. Criteria are evaluated independently
// so the result lists every failure.
func (uc *LoanUseCase) CheckEligibility(ctx context.Context, memberID string, amount decimal.Decimal) (*domain.EligibilityResult, error) {
	member, err := uc.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	savings, err := uc.accountRepo.TotalSavings(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("total savings: %w", err)
	}

	openLoans, err := uc.loanRepo.CountOpenByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("open loan count: %w", err)
	}

	profile := domain.EligibilityProfile{
		Status:           member.Status,
		MembershipMonths: member.MembershipMonths(time.Now().UTC()),
		TotalSavings:     savings,
		OpenLoans:        openLoans,
		CreditScore:      member.CreditScore,
		KYCVerified:      member.KYCVerified,
	}

	result := domain.CheckEligibility(uc.eligibility, profile, amount)

	return &result, nil
}

// ApplyLoanInput represents a loan application.
type ApplyLoanInput struct {
	MemberID     string
	Amount       decimal.Decimal
	PeriodMonths int
}

// ApplyLoan runs the eligibility gate and creates the loan in pending
// status. An ineligible application fails with an EligibilityError
// carrying every failed reason and creates no row.
func (uc *LoanUseCase) ApplyLoan(ctx context.Context, input ApplyLoanInput) (*domain.Loan, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateLoanPeriod(input.PeriodMonths); err != nil {
		return nil, err
	}

	eligibility, err := uc.CheckEligibility(ctx, input.MemberID, input.Amount)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, &domain.EligibilityError{Reasons: eligibility.FailedReasons}
	}

	now := time.Now().UTC()

	processingFee := input.Amount.Mul(uc.product.ProcessingFeePercent).Div(hundred()).Round(2)
	insuranceFee := input.Amount.Mul(uc.product.InsuranceFeePercent).Div(hundred()).Round(2)
	monthly := uc.calc.MonthlyPayment(input.Amount, uc.product.AnnualRate, input.PeriodMonths)
	total := uc.calc.TotalLoanAmount(input.Amount, uc.product.AnnualRate, input.PeriodMonths)

	id := uc.idGen.Generate()
	loan := &domain.Loan{
		ID:                 id,
		MemberID:           input.MemberID,
		LoanNumber:         loanNumber(id, now),
		Principal:          input.Amount,
		AnnualRate:         uc.product.AnnualRate,
		ProcessingFee:      processingFee,
		InsuranceFee:       insuranceFee,
		PeriodMonths:       input.PeriodMonths,
		MonthlyPayment:     monthly,
		TotalAmount:        total,
		OutstandingBalance: total,
		Status:             domain.LoanStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := loan.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The eligibility pre-check races with concurrent applications;
	// the partial unique index on open loans is the real guarantee and
	// surfaces here as ErrActiveLoanExists.
	if err := uc.loanRepo.Create(ctx, tx, loan); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansApplied.Inc()
		uc.metrics.LoanAmount.Observe(loan.Principal.InexactFloat64())
	}

	return loan, nil
}

// ApproveLoan transitions a pending loan to approved.
func (uc *LoanUseCase) ApproveLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	if err := loan.Transition(domain.LoanStatusApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan.ApprovedAt = &now
	loan.UpdatedAt = now

	if err := uc.loanRepo.UpdateStatus(ctx, tx, loan); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansApproved.Inc()
	}

	return loan, nil
}

// DisburseLoanInput represents a disbursement request. AccountID is
// the savings account the principal is paid into; leave empty when the
// money leaves through an external channel.
type DisburseLoanInput struct {
	LoanID    string
	AccountID string
}

// DisburseLoan transitions an approved loan to active, generates the
// repayment schedule, and writes the disbursement ledger entry, all in
// one transaction. Disbursing twice is rejected, never duplicated: the
// status transition fails for an already-active loan and the schedule
// is only generated when no rows exist for the loan.
func (uc *LoanUseCase) DisburseLoan(ctx context.Context, input DisburseLoanInput) (*domain.Loan, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusApproved {
		if loan.DisbursedAt != nil {
			return nil, domain.ErrLoanAlreadyDisbursed
		}
		return nil, domain.ErrInvalidTransition
	}

	if err := loan.Transition(domain.LoanStatusActive); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan.DisbursedAt = &now
	loan.UpdatedAt = now

	if err := uc.loanRepo.UpdateStatus(ctx, tx, loan); err != nil {
		return nil, err
	}

	exists, err := uc.repaymentRepo.ExistsForLoan(ctx, tx, loan.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		schedule := uc.calc.BuildSchedule(loan.Principal, loan.AnnualRate, loan.PeriodMonths, now)
		repayments := make([]*domain.Repayment, 0, len(schedule))
		for _, entry := range schedule {
			repayments = append(repayments, &domain.Repayment{
				ID:              uc.idGen.Generate(),
				LoanID:          loan.ID,
				Sequence:        entry.Sequence,
				DueDate:         entry.DueDate,
				AmountDue:       entry.AmountDue,
				PrincipalAmount: entry.Principal,
				InterestAmount:  entry.Interest,
				PenaltyAmount:   decimal.Zero,
				AmountPaid:      decimal.Zero,
				Status:          domain.RepaymentStatusPending,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}

		if err := uc.repaymentRepo.CreateBatch(ctx, tx, repayments); err != nil {
			return nil, err
		}
	}

	entry := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		MemberID:      loan.MemberID,
		LoanID:        &loan.ID,
		Type:          domain.TransactionTypeDisbursement,
		Amount:        loan.Principal,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  loan.OutstandingBalance,
		Reference:     fmt.Sprintf("disbursement of %s", loan.LoanNumber),
		CreatedAt:     now,
	}

	if err := uc.ledgerRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if input.AccountID != "" {
		if err := uc.creditDisbursement(ctx, tx, loan, input.AccountID, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansDisbursed.Inc()
	}

	return loan, nil
}

// creditDisbursement pays the principal into the member's account.
func (uc *LoanUseCase) creditDisbursement(ctx context.Context, tx Transaction, loan *domain.Loan, accountID string, now time.Time) error {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if account.MemberID != loan.MemberID {
		return domain.ErrAccountNotFound
	}
	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive
	}

	newBalance := account.Balance.Add(loan.Principal)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	return uc.ledgerRepo.Create(ctx, tx, &domain.Transaction{
		ID:            uc.idGen.Generate(),
		MemberID:      loan.MemberID,
		AccountID:     &account.ID,
		LoanID:        &loan.ID,
		Type:          domain.TransactionTypeDisbursement,
		Amount:        loan.Principal,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		Reference:     fmt.Sprintf("disbursement of %s", loan.LoanNumber),
		CreatedAt:     now,
	})
}

// RepaymentInput represents a repayment against a loan.
type RepaymentInput struct {
	LoanID    string
	Amount    decimal.Decimal
	Reference string
}

// RepaymentResult is the outcome of processing a repayment.
type RepaymentResult struct {
	Loan        *domain.Loan
	Repayment   *domain.Repayment
	Penalty     decimal.Decimal
	Outstanding decimal.Decimal
	Completed   bool
}

// ProcessRepayment applies a payment to the earliest unpaid
// installment: it charges any overdue penalty, marks the installment
// paid or partial, decrements the loan's outstanding balance (clamped
// at zero), completes the loan when the balance reaches zero, and
// writes the repayment ledger entry. Everything happens inside one
// transaction, retried on transient database errors.
func (uc *LoanUseCase) ProcessRepayment(ctx context.Context, input RepaymentInput) (*RepaymentResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var result *RepaymentResult

	operation := func() error {
		var err error
		result, err = uc.processRepaymentTx(ctx, input)
		return err
	}

	if uc.retrier != nil {
		if err := uc.retrier.Retry(ctx, operation); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := operation(); err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *LoanUseCase) processRepaymentTx(ctx context.Context, input RepaymentInput) (*RepaymentResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsRepayable() {
		return nil, domain.ErrLoanNotRepayable
	}

	repayment, err := uc.repaymentRepo.GetEarliestUnpaidForUpdate(ctx, tx, loan.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRepaymentNotFound) {
			return nil, domain.ErrNoOutstandingPayments
		}
		return nil, err
	}

	now := time.Now().UTC()

	penalty := uc.calc.Penalty(repayment.Remaining(), repayment.DaysOverdue(now))
	required := repayment.Remaining().Add(penalty)

	// Penalties are charged on top and settled first; only the rest
	// pays the installment, so AmountPaid stays comparable to
	// AmountDue and Remaining never hides a charged penalty.
	applied := input.Amount.Sub(penalty)
	if applied.IsNegative() {
		applied = decimal.Zero
	}

	repayment.PenaltyAmount = repayment.PenaltyAmount.Add(penalty)
	repayment.AmountPaid = repayment.AmountPaid.Add(applied)
	repayment.UpdatedAt = now

	if input.Amount.GreaterThanOrEqual(required) {
		repayment.Status = domain.RepaymentStatusPaid
		repayment.PaidAt = &now
	} else {
		repayment.Status = domain.RepaymentStatusPartial
	}

	if err := uc.repaymentRepo.UpdatePayment(ctx, tx, repayment); err != nil {
		return nil, err
	}

	before := loan.OutstandingBalance
	outstanding := loan.ApplyRepayment(applied)
	loan.OutstandingBalance = outstanding

	completed := outstanding.IsZero()

	var completedAt *time.Time
	switch {
	case completed:
		if err := loan.Transition(domain.LoanStatusCompleted); err != nil {
			return nil, err
		}
		completedAt = &now
		loan.CompletedAt = completedAt
	case loan.Status == domain.LoanStatusOverdue && repayment.Status == domain.RepaymentStatusPaid:
		// The overdue installment is settled; the next sweep re-flags
		// the loan if another one is already past due.
		if err := loan.Transition(domain.LoanStatusActive); err != nil {
			return nil, err
		}
	}

	if err := uc.loanRepo.UpdateOutstanding(ctx, tx, loan.ID, outstanding, loan.Status, completedAt, now); err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		MemberID:      loan.MemberID,
		LoanID:        &loan.ID,
		Type:          domain.TransactionTypeRepayment,
		Amount:        input.Amount,
		BalanceBefore: before,
		BalanceAfter:  outstanding,
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
		uc.metrics.RepaymentsTotal.Inc()
		if penalty.IsPositive() {
			uc.metrics.PenaltiesTotal.Inc()
		}
		if completed {
			uc.metrics.LoansCompleted.Inc()
		}
	}

	return &RepaymentResult{
		Loan:        loan,
		Repayment:   repayment,
		Penalty:     penalty,
		Outstanding: outstanding,
		Completed:   completed,
	}, nil
}

// SweepResult summarizes an overdue or default sweep.
type SweepResult struct {
	Marked int
	Errors []LoanError
}

// LoanError records a per-loan failure during a sweep.
type LoanError struct {
	LoanID string
	Err    error
}

// MarkOverdueLoans flips every active loan with a past-due pending
// installment to overdue. The sweep is idempotent: loans already
// overdue are left alone.
func (uc *LoanUseCase) MarkOverdueLoans(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()

	loanIDs, err := uc.repaymentRepo.LoanIDsWithPastDue(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, loanID := range loanIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		marked, err := uc.markLoan(ctx, loanID, domain.LoanStatusActive, domain.LoanStatusOverdue)
		if err != nil {
			result.Errors = append(result.Errors, LoanError{LoanID: loanID, Err: err})
			continue
		}
		if marked {
			result.Marked++
		}
	}

	log.Info().Int("marked", result.Marked).Int("errors", len(result.Errors)).Msg("overdue sweep finished")

	return result, nil
}

// MarkDefaultedLoans flips overdue loans whose earliest unpaid
// installment is older than the default horizon to defaulted.
func (uc *LoanUseCase) MarkDefaultedLoans(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	horizon := now.AddDate(0, 0, -DefaultHorizonDays)

	overdue, err := uc.loanRepo.ListByStatus(ctx, domain.LoanStatusOverdue, 1000, 0)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, loan := range overdue {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		dueDate, err := uc.repaymentRepo.EarliestUnpaidDueDate(ctx, loan.ID)
		if err != nil {
			result.Errors = append(result.Errors, LoanError{LoanID: loan.ID, Err: err})
			continue
		}
		if dueDate == nil || dueDate.After(horizon) {
			continue
		}

		marked, err := uc.markLoan(ctx, loan.ID, domain.LoanStatusOverdue, domain.LoanStatusDefaulted)
		if err != nil {
			result.Errors = append(result.Errors, LoanError{LoanID: loan.ID, Err: err})
			continue
		}
		if marked {
			result.Marked++
		}
	}

	log.Info().Int("marked", result.Marked).Int("errors", len(result.Errors)).Msg("default sweep finished")

	return result, nil
}

// markLoan transitions a single loan under lock. Returns false when
// the loan is no longer in the expected status, which keeps the sweeps
// idempotent.
func (uc *LoanUseCase) markLoan(ctx context.Context, loanID string, from, to domain.LoanStatus) (bool, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return false, err
	}
	if loan.Status != from {
		return false, nil
	}

	if err := loan.Transition(to); err != nil {
		return false, err
	}
	loan.UpdatedAt = time.Now().UTC()

	if err := uc.loanRepo.UpdateStatus(ctx, tx, loan); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// GetLoan retrieves a loan by ID.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// GetSchedule returns a loan's repayment schedule.
func (uc *LoanUseCase) GetSchedule(ctx context.Context, loanID string) ([]*domain.Repayment, error) {
	if _, err := uc.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return uc.repaymentRepo.ListByLoan(ctx, loanID)
}

// ListLoansByMemberInput represents input for listing a member's loans.
type ListLoansByMemberInput struct {
	MemberID string
	Limit    int
	Offset   int
}

// ListLoansByMember lists a member's loans.
func (uc *LoanUseCase) ListLoansByMember(ctx context.Context, input ListLoansByMemberInput) ([]*domain.Loan, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.loanRepo.ListByMember(ctx, input.MemberID, limit, offset)
}

// PreviewSchedule builds an amortization schedule without persisting
// anything, for quoting terms to a member.
func (uc *LoanUseCase) PreviewSchedule(principal decimal.Decimal, months int) ([]domain.ScheduleEntry, error) {
	if err := domain.ValidateAmount(principal); err != nil {
		return nil, err
	}
	if err := domain.ValidateLoanPeriod(months); err != nil {
		return nil, err
	}

	return uc.calc.BuildSchedule(principal, uc.product.AnnualRate, months, time.Now().UTC()), nil
}

// loanNumber derives the human-readable loan number from the ULID and
// application date.
func loanNumber(id string, now time.Time) string {
	suffix := id
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return fmt.Sprintf("LN-%s-%s", now.Format("200601"), suffix)
}

func hundred() decimal.Decimal {
	return decimal.NewFromInt(100)
}
