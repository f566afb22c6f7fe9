package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/infrastructure/metrics"
)

// CreditScoreUseCase assembles member aggregates and derives credit
// scores. Scoring itself is pure (domain.CreditScorer); this layer
// only gathers the inputs and persists the result.
type CreditScoreUseCase struct {
	memberRepo    MemberRepository
	accountRepo   AccountRepository
	loanRepo      LoanRepository
	repaymentRepo RepaymentRepository
	ledgerRepo    TransactionRepository
	scorer        *domain.CreditScorer
	cache         Cache
	metrics       *metrics.Metrics
}

// NewCreditScoreUseCase creates a new CreditScoreUseCase. cache may be
// nil to disable score caching and metrics may be nil to disable
// counters.
func NewCreditScoreUseCase(
	memberRepo MemberRepository,
	accountRepo AccountRepository,
	loanRepo LoanRepository,
	repaymentRepo RepaymentRepository,
	ledgerRepo TransactionRepository,
	scorer *domain.CreditScorer,
	cache Cache,
	m *metrics.Metrics,
) *CreditScoreUseCase {
	return &CreditScoreUseCase{
		memberRepo:    memberRepo,
		accountRepo:   accountRepo,
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		ledgerRepo:    ledgerRepo,
		scorer:        scorer,
		cache:         cache,
		metrics:       m,
	}
}

// ScoreResult is a computed credit score with the profile it was
// derived from.
type ScoreResult struct {
	MemberID   string
	Score      int
	Profile    domain.CreditProfile
	ComputedAt time.Time
}

// BuildProfile assembles the aggregated member view the scorer needs.
// Every aggregate defaults to zero when the underlying data is missing.
func (uc *CreditScoreUseCase) BuildProfile(ctx context.Context, memberID string) (domain.CreditProfile, error) {
	member, err := uc.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return domain.CreditProfile{}, err
	}

	now := time.Now().UTC()

	savings, err := uc.accountRepo.TotalSavings(ctx, memberID)
	if err != nil {
		return domain.CreditProfile{}, fmt.Errorf("total savings: %w", err)
	}

	statusCounts, err := uc.loanRepo.StatusCounts(ctx, memberID)
	if err != nil {
		return domain.CreditProfile{}, fmt.Errorf("loan status counts: %w", err)
	}

	totalLoans := 0
	for _, n := range statusCounts {
		totalLoans += n
	}

	totalRepayments, onTime, err := uc.repaymentRepo.Stats(ctx, memberID)
	if err != nil {
		return domain.CreditProfile{}, fmt.Errorf("repayment stats: %w", err)
	}

	recent, err := uc.ledgerRepo.CountByMemberSince(ctx, memberID, now.Add(-ActivityWindow))
	if err != nil {
		return domain.CreditProfile{}, fmt.Errorf("recent transactions: %w", err)
	}

	return domain.CreditProfile{
		TotalSavings:       savings,
		HasLoanHistory:     totalLoans > 0,
		TotalRepayments:    totalRepayments,
		OnTimeRepayments:   onTime,
		MembershipMonths:   member.MembershipMonths(now),
		RecentTransactions: recent,
		OverdueLoans:       statusCounts[domain.LoanStatusOverdue],
		DefaultedLoans:     statusCounts[domain.LoanStatusDefaulted],
		Suspended:          member.Status == domain.MemberStatusSuspended,
	}, nil
}

// CalculateScore computes a member's score without persisting it.
func (uc *CreditScoreUseCase) CalculateScore(ctx context.Context, memberID string) (*ScoreResult, error) {
	profile, err := uc.BuildProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}

	score := uc.scorer.Score(profile)

	if uc.metrics != nil {
		uc.metrics.ScoresComputed.Inc()
		uc.metrics.ScoreValue.Observe(float64(score))
	}

	return &ScoreResult{
		MemberID:   memberID,
		Score:      score,
		Profile:    profile,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// UpdateScore recomputes a member's score and persists it. The
// operation is idempotent and safe to re-run.
func (uc *CreditScoreUseCase) UpdateScore(ctx context.Context, memberID string) (*ScoreResult, error) {
	result, err := uc.CalculateScore(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := uc.memberRepo.UpdateCreditScore(ctx, memberID, result.Score, result.ComputedAt); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		key := scoreCacheKey(memberID)
		if err := uc.cache.Set(ctx, key, strconv.Itoa(result.Score), CreditScoreCacheTTL); err != nil {
			log.Warn().Err(err).Str("member_id", memberID).Msg("failed to cache credit score")
		}
	}

	return result, nil
}

// CachedScore returns the cached score when fresh, falling back to a
// full computation (without persisting).
func (uc *CreditScoreUseCase) CachedScore(ctx context.Context, memberID string) (int, error) {
	if uc.cache != nil {
		if v, err := uc.cache.Get(ctx, scoreCacheKey(memberID)); err == nil {
			if score, convErr := strconv.Atoi(v); convErr == nil {
				if uc.metrics != nil {
					uc.metrics.ScoreCacheHits.Inc()
				}
				return score, nil
			}
		}
		if uc.metrics != nil {
			uc.metrics.ScoreCacheMiss.Inc()
		}
	}

	result, err := uc.CalculateScore(ctx, memberID)
	if err != nil {
		return 0, err
	}

	return result.Score, nil
}

// MemberError records a per-member failure during a batch sweep.
type MemberError struct {
	MemberID string
	Err      error
}

// RecomputeResult summarizes a score recompute sweep.
type RecomputeResult struct {
	Updated int
	Errors  []MemberError
}

// RecomputeAllScores recomputes and persists every member's score.
// Per-member failures are collected, not raised, so one bad member
// does not abort the sweep.
func (uc *CreditScoreUseCase) RecomputeAllScores(ctx context.Context) (*RecomputeResult, error) {
	ids, err := uc.memberRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &RecomputeResult{}
	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if _, err := uc.UpdateScore(ctx, id); err != nil {
			result.Errors = append(result.Errors, MemberError{MemberID: id, Err: err})
			continue
		}
		result.Updated++
	}

	return result, nil
}

func scoreCacheKey(memberID string) string {
	return "creditscore:" + memberID
}
