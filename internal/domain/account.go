package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType distinguishes the products a member can hold.
type AccountType string

const (
	AccountTypeSavings      AccountType = "savings"
	AccountTypeShares       AccountType = "shares"
	AccountTypeFixedDeposit AccountType = "fixed_deposit"
)

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusDormant AccountStatus = "dormant"
	AccountStatusClosed  AccountStatus = "closed"
)

// Account is a member-owned balance. Only savings accounts earn daily
// interest; fixed deposits earn tiered simple interest at maturity.
type Account struct {
	ID             string
	MemberID       string
	Type           AccountType
	Status         AccountStatus
	Balance        decimal.Decimal
	InterestEarned decimal.Decimal
	LastInterestAt *time.Time
	TermMonths     *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateWithdrawal checks that a withdrawal would not overdraw the account.
func (a *Account) ValidateWithdrawal(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateDeposit checks that a deposit amount is acceptable.
func (a *Account) ValidateDeposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// EarnsDailyInterest reports whether the account participates in the
// daily interest crediting sweep.
func (a *Account) EarnsDailyInterest() bool {
	return a.Type == AccountTypeSavings &&
		a.Status == AccountStatusActive &&
		a.Balance.IsPositive()
}

// InterestCreditedOn reports whether interest was already credited on
// the given calendar day. The sweep uses this to stay idempotent when
// re-run within the same day.
func (a *Account) InterestCreditedOn(day time.Time) bool {
	if a.LastInterestAt == nil {
		return false
	}
	y1, m1, d1 := a.LastInterestAt.UTC().Date()
	y2, m2, d2 := day.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
