package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Member errors
	ErrMemberNotFound     = errors.New("member not found")
	ErrMemberNotActive    = errors.New("member is not active")
	ErrMemberNotApproved  = errors.New("member has not been approved")
	ErrMemberAlreadyFinal = errors.New("member status cannot be changed")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAccountType = errors.New("invalid account type")

	// Loan errors
	ErrLoanNotFound          = errors.New("loan not found")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidPeriod         = errors.New("repayment period must be positive")
	ErrInvalidTransition     = errors.New("invalid loan status transition")
	ErrLoanAlreadyDisbursed  = errors.New("loan has already been disbursed")
	ErrActiveLoanExists      = errors.New("member already has an open loan")
	ErrLoanNotRepayable      = errors.New("loan is not accepting repayments")
	ErrNoOutstandingPayments = errors.New("loan has no outstanding repayments")

	// Repayment errors
	ErrRepaymentNotFound = errors.New("repayment not found")

	// Ledger errors
	ErrTransactionNotFound = errors.New("transaction not found")
)

// EligibilityError is returned when a loan application fails the
// eligibility gate. Reasons lists every failed criterion, not just
// the first one.
type EligibilityError struct {
	Reasons []string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("member is not eligible: %s", strings.Join(e.Reasons, "; "))
}

// IsEligibilityError reports whether err is an EligibilityError and
// returns the failed reasons if so.
func IsEligibilityError(err error) (*EligibilityError, bool) {
	var ee *EligibilityError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
