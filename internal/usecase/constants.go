package usecase

import "time"

const (
	// ActivityWindow is the trailing window of ledger activity that
	// feeds the credit score's activity component.
	ActivityWindow = 90 * 24 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// CreditScoreCacheTTL is how long computed credit scores are cached.
	CreditScoreCacheTTL = time.Hour

	// DefaultHorizonDays is how long a loan may sit overdue before the
	// default sweep flips it to defaulted.
	DefaultHorizonDays = 90
)
