package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mukwano/sacco/internal/infrastructure/metrics"
	"github.com/mukwano/sacco/internal/usecase"
)

// InterestSweeper runs the daily interest crediting batch.
type InterestSweeper interface {
	CreditDailyInterest(ctx context.Context) (*usecase.InterestSweepResult, error)
}

// LoanSweeper runs the overdue and defaulted loan sweeps.
type LoanSweeper interface {
	MarkOverdueLoans(ctx context.Context) (*usecase.SweepResult, error)
	MarkDefaultedLoans(ctx context.Context) (*usecase.SweepResult, error)
}

// ScoreSweeper recomputes every member's credit score.
type ScoreSweeper interface {
	RecomputeAllScores(ctx context.Context) (*usecase.RecomputeResult, error)
}

// Specs holds the cron expressions for the periodic sweeps. An empty
// spec disables that job; external triggering through the API stays
// available either way.
type Specs struct {
	Interest string
	Overdue  string
	Scores   string
}

// Scheduler runs the periodic sweeps on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	interestUC InterestSweeper
	loanUC     LoanSweeper
	scoreUC    ScoreSweeper
	jobTimeout time.Duration
}

// New creates a Scheduler. metrics may be nil to disable sweep metrics.
func New(
	logger zerolog.Logger,
	m *metrics.Metrics,
	interestUC InterestSweeper,
	loanUC LoanSweeper,
	scoreUC ScoreSweeper,
) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		logger:     logger,
		metrics:    m,
		interestUC: interestUC,
		loanUC:     loanUC,
		scoreUC:    scoreUC,
		jobTimeout: 30 * time.Minute,
	}
}

// Register adds the configured jobs. Jobs with an empty spec are
// skipped. Returns an error for an invalid cron expression.
func (s *Scheduler) Register(specs Specs) error {
	if specs.Interest != "" {
		if _, err := s.cron.AddFunc(specs.Interest, s.runInterestSweep); err != nil {
			return err
		}
		s.logger.Info().Str("spec", specs.Interest).Msg("interest sweep scheduled")
	}

	if specs.Overdue != "" {
		if _, err := s.cron.AddFunc(specs.Overdue, s.runOverdueSweep); err != nil {
			return err
		}
		s.logger.Info().Str("spec", specs.Overdue).Msg("overdue sweep scheduled")
	}

	if specs.Scores != "" {
		if _, err := s.cron.AddFunc(specs.Scores, s.runScoreSweep); err != nil {
			return err
		}
		s.logger.Info().Str("spec", specs.Scores).Msg("credit score sweep scheduled")
	}

	return nil
}

// Start begins running the registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runInterestSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.interestUC.CreditDailyInterest(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("interest sweep failed")
		s.observe("interest", start, 0, 0, err)
		return
	}

	s.logger.Info().
		Int("credited", result.Credited).
		Int("skipped", result.Skipped).
		Str("total_interest", result.TotalInterest.String()).
		Int("errors", len(result.Errors)).
		Msg("interest sweep finished")
	s.observe("interest", start, result.Credited, len(result.Errors), nil)

	if s.metrics != nil {
		total, _ := result.TotalInterest.Float64()
		s.metrics.InterestAmount.Add(total)
	}
}

func (s *Scheduler) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	overdue, err := s.loanUC.MarkOverdueLoans(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("overdue sweep failed")
		s.observe("overdue", start, 0, 0, err)
		return
	}

	defaulted, err := s.loanUC.MarkDefaultedLoans(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("default sweep failed")
		s.observe("overdue", start, overdue.Marked, len(overdue.Errors), err)
		return
	}

	s.logger.Info().
		Int("overdue", overdue.Marked).
		Int("defaulted", defaulted.Marked).
		Msg("overdue sweep finished")
	s.observe("overdue", start, overdue.Marked+defaulted.Marked, len(overdue.Errors)+len(defaulted.Errors), nil)
}

func (s *Scheduler) runScoreSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.scoreUC.RecomputeAllScores(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("credit score sweep failed")
		s.observe("scores", start, 0, 0, err)
		return
	}

	s.logger.Info().
		Int("updated", result.Updated).
		Int("errors", len(result.Errors)).
		Msg("credit score sweep finished")
	s.observe("scores", start, result.Updated, len(result.Errors), nil)
}

func (s *Scheduler) observe(sweep string, start time.Time, items, itemErrors int, err error) {
	if s.metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.SweepRuns.WithLabelValues(sweep, status).Inc()
	s.metrics.SweepDuration.WithLabelValues(sweep).Observe(time.Since(start).Seconds())
	s.metrics.SweepItems.WithLabelValues(sweep).Add(float64(items))
	s.metrics.SweepErrors.WithLabelValues(sweep).Add(float64(itemErrors))
}
