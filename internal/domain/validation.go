package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidMemberName = errors.New("invalid member name")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall    = errors.New("amount below minimum allowed")
	ErrPeriodTooLong     = errors.New("repayment period exceeds maximum allowed")
)

// Validation constants
const (
	MaxMemberNameLength = 255
	MinMemberNameLength = 1
	MaxLoanAmount       = "1000000000000" // 1 trillion
	MinMonetaryAmount   = "0.01"
	MaxLoanPeriodMonths = 120
)

// Ugandan MSISDN, with or without the country prefix.
var phoneRegex = regexp.MustCompile(`^(\+?256|0)?7\d{8}$`)

// ValidateMemberName validates a member's display name.
func ValidateMemberName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinMemberNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidMemberName)
	}

	if len(name) > MaxMemberNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidMemberName, MaxMemberNameLength)
	}

	return nil
}

// ValidatePhone validates a member's phone number.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)

	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}

	return nil
}

// ValidateAmount validates a monetary amount for deposits, withdrawals,
// and loan principals.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinMonetaryAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinMonetaryAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxLoanAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxLoanAmount)
	}

	return nil
}

// ValidateLoanPeriod validates a repayment period in months.
func ValidateLoanPeriod(months int) error {
	if months <= 0 {
		return ErrInvalidPeriod
	}

	if months > MaxLoanPeriodMonths {
		return fmt.Errorf("%w: maximum period is %d months", ErrPeriodTooLong, MaxLoanPeriodMonths)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
