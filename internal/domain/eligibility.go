package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EligibilityConfig carries the loan eligibility thresholds.
type EligibilityConfig struct {
	MinMembershipMonths   int
	MinSavingsBalance     decimal.Decimal
	MaxLoanToSavingsRatio decimal.Decimal
	MinCreditScore        int
	RequireKYC            bool
}

// DefaultEligibilityConfig returns the fallback eligibility thresholds.
func DefaultEligibilityConfig() EligibilityConfig {
	return EligibilityConfig{
		MinMembershipMonths:   6,
		MinSavingsBalance:     decimal.NewFromInt(100_000),
		MaxLoanToSavingsRatio: decimal.NewFromInt(3),
		MinCreditScore:        500,
		RequireKYC:            true,
	}
}

// EligibilityProfile is the aggregated member view the eligibility
// gate evaluates. Assembled by the data-access layer.
type EligibilityProfile struct {
	Status           MemberStatus
	MembershipMonths int
	TotalSavings     decimal.Decimal
	OpenLoans        int
	CreditScore      int
	KYCVerified      bool
}

// EligibilityResult is the outcome of an eligibility check. Every
// criterion is evaluated independently so FailedReasons lists all
// failures, not just the first.
type EligibilityResult struct {
	Eligible          bool
	FailedReasons     []string
	MaxEligibleAmount decimal.Decimal
}

// CheckEligibility evaluates the six loan eligibility criteria for the
// requested amount.
func CheckEligibility(cfg EligibilityConfig, p EligibilityProfile, requested decimal.Decimal) EligibilityResult {
	var reasons []string

	if p.Status != MemberStatusActive {
		reasons = append(reasons, fmt.Sprintf("membership status is %s, must be active", p.Status))
	}

	if p.MembershipMonths < cfg.MinMembershipMonths {
		reasons = append(reasons, fmt.Sprintf("membership duration %d months is below the minimum of %d",
			p.MembershipMonths, cfg.MinMembershipMonths))
	}

	if p.TotalSavings.LessThan(cfg.MinSavingsBalance) {
		reasons = append(reasons, fmt.Sprintf("savings balance %s is below the minimum of %s",
			p.TotalSavings.StringFixed(2), cfg.MinSavingsBalance.StringFixed(2)))
	}

	maxAmount := p.TotalSavings.Mul(cfg.MaxLoanToSavingsRatio).Round(2)
	if requested.GreaterThan(maxAmount) {
		reasons = append(reasons, fmt.Sprintf("requested amount %s exceeds the maximum of %s (%sx savings)",
			requested.StringFixed(2), maxAmount.StringFixed(2), cfg.MaxLoanToSavingsRatio.String()))
	}

	if p.OpenLoans > 0 {
		reasons = append(reasons, "member already has a pending, approved, or active loan")
	}

	if p.CreditScore < cfg.MinCreditScore {
		reasons = append(reasons, fmt.Sprintf("credit score %d is below the minimum of %d",
			p.CreditScore, cfg.MinCreditScore))
	}

	if cfg.RequireKYC && !p.KYCVerified {
		reasons = append(reasons, "KYC verification is required")
	}

	return EligibilityResult{
		Eligible:          len(reasons) == 0,
		FailedReasons:     reasons,
		MaxEligibleAmount: maxAmount,
	}
}
