package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/usecase"
)

// CreditScoreService defines the behavior needed by CreditScoreHandler.
type CreditScoreService interface {
	CalculateScore(ctx context.Context, memberID string) (*usecase.ScoreResult, error)
	UpdateScore(ctx context.Context, memberID string) (*usecase.ScoreResult, error)
}

// CreditScoreHandler handles credit score HTTP requests.
type CreditScoreHandler struct {
	scoreUC CreditScoreService
}

// NewCreditScoreHandler creates a new CreditScoreHandler.
func NewCreditScoreHandler(scoreUC CreditScoreService) *CreditScoreHandler {
	return &CreditScoreHandler{scoreUC: scoreUC}
}

// Get computes a member's current credit score without persisting it.
func (h *CreditScoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	result, err := h.scoreUC.CalculateScore(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditScoreFromUseCase(result))
}

// Refresh recomputes and persists a member's credit score.
func (h *CreditScoreHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	result, err := h.scoreUC.UpdateScore(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditScoreFromUseCase(result))
}
