package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle status of a loan.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusOverdue   LoanStatus = "overdue"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// OpenLoanStatuses are the statuses that count against the one-loan-per-member
// rule. A member may hold at most one loan in any of these states.
var OpenLoanStatuses = []LoanStatus{
	LoanStatusPending,
	LoanStatusApproved,
	LoanStatusActive,
	LoanStatusOverdue,
}

// loanTransitions is the allowed state machine:
// pending -> approved -> active -> {completed | overdue -> (completed | defaulted)}.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusPending:  {LoanStatusApproved},
	LoanStatusApproved: {LoanStatusActive},
	LoanStatusActive:   {LoanStatusOverdue, LoanStatusCompleted},
	LoanStatusOverdue:  {LoanStatusActive, LoanStatusCompleted, LoanStatusDefaulted},
}

// LoanProductConfig carries the lending terms applied to new loans.
// Fees are percentages of the principal.
type LoanProductConfig struct {
	AnnualRate           decimal.Decimal
	ProcessingFeePercent decimal.Decimal
	InsuranceFeePercent  decimal.Decimal
}

// DefaultLoanProductConfig returns the fallback lending terms.
func DefaultLoanProductConfig() LoanProductConfig {
	return LoanProductConfig{
		AnnualRate:           decimal.NewFromInt(12),
		ProcessingFeePercent: decimal.NewFromInt(2),
		InsuranceFeePercent:  decimal.NewFromInt(1),
	}
}

// Loan represents a member loan with its amortization terms.
type Loan struct {
	ID                 string
	MemberID           string
	LoanNumber         string
	Principal          decimal.Decimal
	AnnualRate         decimal.Decimal
	ProcessingFee      decimal.Decimal
	InsuranceFee       decimal.Decimal
	PeriodMonths       int
	MonthlyPayment     decimal.Decimal
	TotalAmount        decimal.Decimal
	OutstandingBalance decimal.Decimal
	Status             LoanStatus
	ApprovedAt         *time.Time
	DisbursedAt        *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the loan terms.
func (l *Loan) Validate() error {
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if l.PeriodMonths <= 0 {
		return ErrInvalidPeriod
	}
	if l.AnnualRate.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// CanTransition reports whether status can legally move to target.
func (l *Loan) CanTransition(target LoanStatus) bool {
	for _, s := range loanTransitions[l.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Transition moves the loan to target or fails with ErrInvalidTransition.
func (l *Loan) Transition(target LoanStatus) error {
	if !l.CanTransition(target) {
		return ErrInvalidTransition
	}
	l.Status = target
	return nil
}

// IsRepayable reports whether the loan accepts repayments.
func (l *Loan) IsRepayable() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusOverdue
}

// ApplyRepayment reduces the outstanding balance by amount, clamped at
// zero. It returns the new balance; the outstanding balance decreases
// monotonically and never goes negative.
func (l *Loan) ApplyRepayment(amount decimal.Decimal) decimal.Decimal {
	balance := l.OutstandingBalance.Sub(amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return balance
}

// RepaymentStatus is the payment status of a single installment.
type RepaymentStatus string

const (
	RepaymentStatusPending RepaymentStatus = "pending"
	RepaymentStatusPartial RepaymentStatus = "partial"
	RepaymentStatusPaid    RepaymentStatus = "paid"
)

// Repayment is one installment of a loan's schedule. The schedule is
// generated once at disbursement; rows are immutable afterwards except
// for the payment fields.
type Repayment struct {
	ID              string
	LoanID          string
	Sequence        int
	DueDate         time.Time
	AmountDue       decimal.Decimal
	PrincipalAmount decimal.Decimal
	InterestAmount  decimal.Decimal
	PenaltyAmount   decimal.Decimal
	AmountPaid      decimal.Decimal
	PaidAt          *time.Time
	Status          RepaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Remaining returns the unpaid portion of the installment, excluding penalties.
func (r *Repayment) Remaining() decimal.Decimal {
	remaining := r.AmountDue.Sub(r.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// DaysOverdue returns whole days past the due date, or 0 when not yet due.
func (r *Repayment) DaysOverdue(now time.Time) int {
	if !now.After(r.DueDate) {
		return 0
	}
	return int(now.Sub(r.DueDate).Hours() / 24)
}
