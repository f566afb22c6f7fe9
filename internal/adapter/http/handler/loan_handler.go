package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CheckEligibility(ctx context.Context, memberID string, amount decimal.Decimal) (*domain.EligibilityResult, error)
	ApplyLoan(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error)
	ApproveLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	DisburseLoan(ctx context.Context, input usecase.DisburseLoanInput) (*domain.Loan, error)
	ProcessRepayment(ctx context.Context, input usecase.RepaymentInput) (*usecase.RepaymentResult, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID string) ([]*domain.Repayment, error)
	ListLoansByMember(ctx context.Context, input usecase.ListLoansByMemberInput) ([]*domain.Loan, error)
	PreviewSchedule(principal decimal.Decimal, months int) ([]domain.ScheduleEntry, error)
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// CheckEligibility evaluates the eligibility criteria for a member and
// amount without creating a loan.
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckEligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.loanUC.CheckEligibility(r.Context(), req.MemberID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EligibilityFromDomain(result))
}

// Apply submits a loan application.
func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.ApplyLoan(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Approve approves a pending loan.
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.ApproveLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Disburse activates an approved loan and generates its schedule.
func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.DisburseLoanRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	loan, err := h.loanUC.DisburseLoan(r.Context(), usecase.DisburseLoanInput{
		LoanID:    id,
		AccountID: req.AccountID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Repay applies a payment to a loan's earliest unpaid installment.
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.loanUC.ProcessRepayment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RepaymentResultFromUseCase(result))
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Schedule retrieves a loan's repayment schedule.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	schedule, err := h.loanUC.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RepaymentsFromDomain(schedule))
}

// ListByMember lists a member's loans.
func (h *LoanHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	if memberID == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	loans, err := h.loanUC.ListLoansByMember(r.Context(), usecase.ListLoansByMemberInput{
		MemberID: memberID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// PreviewSchedule computes an amortization schedule without creating a
// loan. Principal and months come from query parameters.
func (h *LoanHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	principalRaw := r.URL.Query().Get("principal")
	principal, err := decimal.NewFromString(principalRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid principal", principalRaw)
		return
	}

	months := parseIntQuery(r, "months", 0)

	schedule, err := h.loanUC.PreviewSchedule(principal, months)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(schedule))
}
