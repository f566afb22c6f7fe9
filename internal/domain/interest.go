package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred             = decimal.NewFromInt(100)
	daysInBankingYear   = decimal.NewFromInt(36500) // 365 days x 100 (rates are percentages)
	monthsTimesPercents = decimal.NewFromInt(1200)  // 12 months x 100
)

// InterestConfig carries every tunable the interest calculator needs.
// All rates are annual percentages unless stated otherwise.
type InterestConfig struct {
	SavingsAnnualRate decimal.Decimal

	// Overdue penalties
	GracePeriodDays   int
	PenaltyDailyRate  decimal.Decimal // fraction of the amount per day, e.g. 0.001 = 0.1%/day
	MaxPenaltyPercent decimal.Decimal // cap as a percentage of the overdue amount

	// Fixed deposit rate tiers keyed by term length.
	FixedDepositRateUnder3 decimal.Decimal
	FixedDepositRate3to5   decimal.Decimal
	FixedDepositRate6to11  decimal.Decimal
	FixedDepositRate12to23 decimal.Decimal
	FixedDepositRate24Plus decimal.Decimal
}

// DefaultInterestConfig returns the fallback tuning used when no
// explicit configuration is supplied.
func DefaultInterestConfig() InterestConfig {
	return InterestConfig{
		SavingsAnnualRate:      decimal.NewFromInt(5),
		GracePeriodDays:        7,
		PenaltyDailyRate:       decimal.NewFromFloat(0.001),
		MaxPenaltyPercent:      decimal.NewFromInt(10),
		FixedDepositRateUnder3: decimal.NewFromInt(4),
		FixedDepositRate3to5:   decimal.NewFromInt(6),
		FixedDepositRate6to11:  decimal.NewFromInt(8),
		FixedDepositRate12to23: decimal.NewFromInt(10),
		FixedDepositRate24Plus: decimal.NewFromInt(12),
	}
}

// InterestCalculator computes savings interest, loan amortization, and
// penalties. All methods are pure functions of their inputs and the
// injected configuration.
type InterestCalculator struct {
	cfg InterestConfig
}

// NewInterestCalculator creates a calculator with the given configuration.
func NewInterestCalculator(cfg InterestConfig) *InterestCalculator {
	return &InterestCalculator{cfg: cfg}
}

// DailySavingsInterest returns one day of interest on a savings balance:
// balance x annualRate / 36500, rounded to 2 decimals. Non-positive
// balances earn nothing.
func (c *InterestCalculator) DailySavingsInterest(balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return balance.Mul(c.cfg.SavingsAnnualRate).Div(daysInBankingYear).Round(2)
}

// MonthlyPayment returns the EMI for a reducing-balance loan:
// P x r x (1+r)^n / ((1+r)^n - 1), where r is the monthly rate.
// A zero rate degrades to simple division P/n.
func (c *InterestCalculator) MonthlyPayment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(months))
	if annualRate.IsZero() {
		return principal.Div(n).Round(2)
	}

	r := annualRate.Div(monthsTimesPercents)
	compound := decimal.NewFromInt(1).Add(r).Pow(n)

	return principal.Mul(r).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1))).Round(2)
}

// TotalLoanAmount returns the total repaid over the life of the loan.
func (c *InterestCalculator) TotalLoanAmount(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if annualRate.IsZero() {
		return principal.Round(2)
	}
	return c.MonthlyPayment(principal, annualRate, months).Mul(decimal.NewFromInt(int64(months))).Round(2)
}

// ScheduleEntry is one installment of a generated repayment schedule.
type ScheduleEntry struct {
	Sequence     int
	DueDate      time.Time
	AmountDue    decimal.Decimal
	Principal    decimal.Decimal
	Interest     decimal.Decimal
	BalanceAfter decimal.Decimal
}

// BuildSchedule generates the reducing-balance repayment schedule.
// Installments fall due monthly starting one month after disbursedAt
// (or after now when disbursedAt is the zero time). Each period's
// interest is charged on the declining balance; the final installment
// absorbs rounding so the balance after it is exactly zero.
func (c *InterestCalculator) BuildSchedule(principal, annualRate decimal.Decimal, months int, disbursedAt time.Time) []ScheduleEntry {
	if months <= 0 || !principal.IsPositive() {
		return nil
	}

	start := disbursedAt
	if start.IsZero() {
		start = time.Now().UTC()
	}

	emi := c.MonthlyPayment(principal, annualRate, months)
	monthlyRate := annualRate.Div(monthsTimesPercents)

	entries := make([]ScheduleEntry, 0, months)
	balance := principal

	for i := 1; i <= months; i++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := emi.Sub(interest)

		if i == months {
			// Final installment clears whatever remains.
			principalPart = balance
		}

		balance = balance.Sub(principalPart)

		entries = append(entries, ScheduleEntry{
			Sequence:     i,
			DueDate:      start.AddDate(0, i, 0),
			AmountDue:    principalPart.Add(interest).Round(2),
			Principal:    principalPart.Round(2),
			Interest:     interest,
			BalanceAfter: balance.Round(2),
		})
	}

	return entries
}

// Penalty returns the overdue penalty on amount after daysOverdue days.
// Nothing is charged within the grace period; beyond it the penalty
// grows linearly per chargeable day and is capped at a percentage of
// the amount.
func (c *InterestCalculator) Penalty(amount decimal.Decimal, daysOverdue int) decimal.Decimal {
	if daysOverdue <= c.cfg.GracePeriodDays || !amount.IsPositive() {
		return decimal.Zero
	}

	chargeableDays := decimal.NewFromInt(int64(daysOverdue - c.cfg.GracePeriodDays))
	penalty := amount.Mul(c.cfg.PenaltyDailyRate).Mul(chargeableDays)

	maxPenalty := amount.Mul(c.cfg.MaxPenaltyPercent).Div(hundred)
	if penalty.GreaterThan(maxPenalty) {
		penalty = maxPenalty
	}

	return penalty.Round(2)
}

// FixedDepositInterest returns simple interest on a fixed deposit:
// principal x rate x months / 1200, with the annual rate taken from
// the tier matching the term length.
func (c *InterestCalculator) FixedDepositInterest(principal decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}

	rate := c.FixedDepositRate(months)

	return principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))).Div(monthsTimesPercents).Round(2)
}

// FixedDepositRate returns the tiered annual rate for a deposit term.
func (c *InterestCalculator) FixedDepositRate(months int) decimal.Decimal {
	switch {
	case months >= 24:
		return c.cfg.FixedDepositRate24Plus
	case months >= 12:
		return c.cfg.FixedDepositRate12to23
	case months >= 6:
		return c.cfg.FixedDepositRate6to11
	case months >= 3:
		return c.cfg.FixedDepositRate3to5
	default:
		return c.cfg.FixedDepositRateUnder3
	}
}
