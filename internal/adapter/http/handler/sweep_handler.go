package handler

import (
	"context"
	"net/http"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
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

// SweepHandler exposes the batch sweeps over HTTP. Sweeps are
// idempotent, so an external scheduler can trigger them safely.
type SweepHandler struct {
	interestUC InterestSweeper
	loanUC     LoanSweeper
	scoreUC    ScoreSweeper
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(interestUC InterestSweeper, loanUC LoanSweeper, scoreUC ScoreSweeper) *SweepHandler {
	return &SweepHandler{
		interestUC: interestUC,
		loanUC:     loanUC,
		scoreUC:    scoreUC,
	}
}

// Interest credits one day of interest to every eligible savings
// account. Per-account failures are reported in the summary, not as an
// HTTP error.
func (h *SweepHandler) Interest(w http.ResponseWriter, r *http.Request) {
	result, err := h.interestUC.CreditDailyInterest(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InterestSweepResponse{
		Credited:      result.Credited,
		Skipped:       result.Skipped,
		TotalInterest: result.TotalInterest,
		Errors:        len(result.Errors),
	})
}

// Overdue marks active loans with past-due installments overdue, then
// marks long-overdue loans defaulted.
func (h *SweepHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.loanUC.MarkOverdueLoans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	defaulted, err := h.loanUC.MarkDefaultedLoans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]dto.SweepResponse{
		"overdue":   {Marked: overdue.Marked, Errors: len(overdue.Errors)},
		"defaulted": {Marked: defaulted.Marked, Errors: len(defaulted.Errors)},
	})
}

// CreditScores recomputes and persists every member's credit score.
func (h *SweepHandler) CreditScores(w http.ResponseWriter, r *http.Request) {
	result, err := h.scoreUC.RecomputeAllScores(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecomputeScoresResponse{
		Updated: result.Updated,
		Errors:  len(result.Errors),
	})
}
