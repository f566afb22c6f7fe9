package domain

import (
	"github.com/shopspring/decimal"
)

const (
	CreditScoreBase = 500
	CreditScoreMin  = 300
	CreditScoreMax  = 900

	maxCreditPenalty      = 300
	overduePenaltyPerLoan = 50
	defaultedPenaltyPer   = 150
	suspendedPenalty      = 100
)

// ScoreTier maps a threshold to the bonus awarded at or above it.
type ScoreTier struct {
	Threshold decimal.Decimal
	Bonus     int
}

// CreditScoreConfig carries the scoring tiers. Tiers must be ordered
// from the highest threshold down; the first matching tier wins.
type CreditScoreConfig struct {
	SavingsTiers    []ScoreTier // bonus 0-150 on total savings balance
	RepaymentBands  []ScoreTier // bonus 0-200 on on-time repayment percentage
	MembershipTiers []ScoreTier // bonus 0-100 on months since approval
	ActivityTiers   []ScoreTier // bonus 0-50 on recent completed transactions
}

// DefaultCreditScoreConfig returns the standard scoring tiers.
func DefaultCreditScoreConfig() CreditScoreConfig {
	return CreditScoreConfig{
		SavingsTiers: []ScoreTier{
			{decimal.NewFromInt(5_000_000), 150},
			{decimal.NewFromInt(2_000_000), 120},
			{decimal.NewFromInt(1_000_000), 90},
			{decimal.NewFromInt(500_000), 60},
			{decimal.NewFromInt(100_000), 30},
			{decimal.NewFromInt(10_000), 15},
		},
		RepaymentBands: []ScoreTier{
			{decimal.NewFromInt(95), 200},
			{decimal.NewFromInt(85), 160},
			{decimal.NewFromInt(70), 120},
			{decimal.NewFromInt(50), 80},
			{decimal.NewFromInt(30), 40},
			{decimal.NewFromInt(0), 10},
		},
		MembershipTiers: []ScoreTier{
			{decimal.NewFromInt(60), 100},
			{decimal.NewFromInt(36), 80},
			{decimal.NewFromInt(24), 60},
			{decimal.NewFromInt(12), 40},
			{decimal.NewFromInt(6), 20},
		},
		ActivityTiers: []ScoreTier{
			{decimal.NewFromInt(50), 50},
			{decimal.NewFromInt(30), 40},
			{decimal.NewFromInt(15), 30},
			{decimal.NewFromInt(5), 20},
			{decimal.NewFromInt(1), 10},
		},
	}
}

// CreditProfile is the aggregated view of a member the scorer needs.
// It is assembled by the data-access layer so the scoring itself stays
// a pure function. Missing data contributes zero to the score.
type CreditProfile struct {
	TotalSavings       decimal.Decimal
	HasLoanHistory     bool
	TotalRepayments    int
	OnTimeRepayments   int
	MembershipMonths   int
	RecentTransactions int
	OverdueLoans       int
	DefaultedLoans     int
	Suspended          bool
}

// CreditScorer derives a member's credit score from a CreditProfile.
type CreditScorer struct {
	cfg CreditScoreConfig
}

// NewCreditScorer creates a scorer with the given tiers.
func NewCreditScorer(cfg CreditScoreConfig) *CreditScorer {
	return &CreditScorer{cfg: cfg}
}

// Score computes the credit score: base 500 plus the savings,
// repayment-history, membership-duration, and activity bonuses, minus
// the penalty, clamped to [300, 900].
func (s *CreditScorer) Score(p CreditProfile) int {
	score := CreditScoreBase +
		s.SavingsScore(p.TotalSavings) +
		s.RepaymentScore(p) +
		s.MembershipScore(p.MembershipMonths) +
		s.ActivityScore(p.RecentTransactions) -
		s.PenaltyScore(p)

	if score < CreditScoreMin {
		return CreditScoreMin
	}
	if score > CreditScoreMax {
		return CreditScoreMax
	}

	return score
}

// SavingsScore returns the savings-tier bonus (0-150).
func (s *CreditScorer) SavingsScore(totalSavings decimal.Decimal) int {
	return tierBonus(s.cfg.SavingsTiers, totalSavings)
}

// RepaymentScore returns the repayment-history bonus (0-200): the
// percentage of on-time repayments across all loans mapped through
// fixed bands. No loan history scores 0; history with no repayments
// recorded yet scores 50.
func (s *CreditScorer) RepaymentScore(p CreditProfile) int {
	if !p.HasLoanHistory {
		return 0
	}
	if p.TotalRepayments == 0 {
		return 50
	}

	pct := decimal.NewFromInt(int64(p.OnTimeRepayments)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(p.TotalRepayments)))

	return tierBonus(s.cfg.RepaymentBands, pct)
}

// MembershipScore returns the membership-duration bonus (0-100).
func (s *CreditScorer) MembershipScore(months int) int {
	return tierBonus(s.cfg.MembershipTiers, decimal.NewFromInt(int64(months)))
}

// ActivityScore returns the recent-activity bonus (0-50).
func (s *CreditScorer) ActivityScore(recentTransactions int) int {
	return tierBonus(s.cfg.ActivityTiers, decimal.NewFromInt(int64(recentTransactions)))
}

// PenaltyScore returns the deduction for overdue loans, defaulted
// loans, and suspension, capped at 300.
func (s *CreditScorer) PenaltyScore(p CreditProfile) int {
	penalty := p.OverdueLoans*overduePenaltyPerLoan + p.DefaultedLoans*defaultedPenaltyPer
	if p.Suspended {
		penalty += suspendedPenalty
	}

	if penalty > maxCreditPenalty {
		return maxCreditPenalty
	}

	return penalty
}

func tierBonus(tiers []ScoreTier, value decimal.Decimal) int {
	for _, t := range tiers {
		if value.GreaterThanOrEqual(t.Threshold) {
			return t.Bonus
		}
	}
	return 0
}
