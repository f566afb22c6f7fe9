package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Member metrics
	MembersRegistered prometheus.Counter
	MembersApproved   prometheus.Counter
	MembersSuspended  prometheus.Counter

	// Account metrics
	AccountsOpened *prometheus.CounterVec
	Deposits       prometheus.Counter
	Withdrawals    prometheus.Counter
	DepositAmount  prometheus.Histogram

	// Loan metrics
	LoansApplied    prometheus.Counter
	LoansApproved   prometheus.Counter
	LoansDisbursed  prometheus.Counter
	LoansCompleted  prometheus.Counter
	LoanAmount      prometheus.Histogram
	RepaymentsTotal prometheus.Counter
	PenaltiesTotal  prometheus.Counter

	// Credit score metrics
	ScoresComputed prometheus.Counter
	ScoreValue     prometheus.Histogram
	ScoreCacheHits prometheus.Counter
	ScoreCacheMiss prometheus.Counter

	// Sweep metrics
	SweepRuns      *prometheus.CounterVec
	SweepDuration  *prometheus.HistogramVec
	SweepItems     *prometheus.CounterVec
	SweepErrors    *prometheus.CounterVec
	InterestAmount prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Member metrics
		MembersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_members_registered_total",
			Help: "Total number of members registered",
		}),
		MembersApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_members_approved_total",
			Help: "Total number of members approved",
		}),
		MembersSuspended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_members_suspended_total",
			Help: "Total number of members suspended",
		}),

		// Account metrics
		AccountsOpened: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sacco_accounts_opened_total",
				Help: "Total number of accounts opened by type",
			},
			[]string{"type"},
		),
		Deposits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_deposits_total",
			Help: "Total number of deposits",
		}),
		Withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_withdrawals_total",
			Help: "Total number of withdrawals",
		}),
		DepositAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sacco_deposit_amount",
			Help:    "Deposit amounts",
			Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		}),

		// Loan metrics
		LoansApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_loans_applied_total",
			Help: "Total number of loan applications accepted",
		}),
		LoansApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_loans_approved_total",
			Help: "Total number of loans approved",
		}),
		LoansDisbursed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_loans_disbursed_total",
			Help: "Total number of loans disbursed",
		}),
		LoansCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_loans_completed_total",
			Help: "Total number of loans fully repaid",
		}),
		LoanAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sacco_loan_amount",
			Help:    "Loan principal amounts",
			Buckets: []float64{100000, 500000, 1000000, 5000000, 10000000, 50000000},
		}),
		RepaymentsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_repayments_total",
			Help: "Total number of repayments processed",
		}),
		PenaltiesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_penalties_total",
			Help: "Total number of overdue penalties charged",
		}),

		// Credit score metrics
		ScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_credit_scores_computed_total",
			Help: "Total number of credit scores computed",
		}),
		ScoreValue: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sacco_credit_score",
			Help:    "Distribution of computed credit scores",
			Buckets: []float64{300, 400, 500, 550, 600, 650, 700, 750, 800, 850},
		}),
		ScoreCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_credit_score_cache_hits_total",
			Help: "Total credit score cache hits",
		}),
		ScoreCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_credit_score_cache_misses_total",
			Help: "Total credit score cache misses",
		}),

		// Sweep metrics
		SweepRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sacco_sweep_runs_total",
				Help: "Total sweep runs by sweep name and outcome",
			},
			[]string{"sweep", "status"},
		),
		SweepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sacco_sweep_duration_seconds",
				Help:    "Duration of sweep runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sweep"},
		),
		SweepItems: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sacco_sweep_items_total",
				Help: "Total items processed by sweeps",
			},
			[]string{"sweep"},
		),
		SweepErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sacco_sweep_errors_total",
				Help: "Total per-item sweep failures",
			},
			[]string{"sweep"},
		),
		InterestAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sacco_interest_credited_total",
			Help: "Total interest credited in minor units",
		}),
	}
}
