package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a domain error to its HTTP status and writes it.
// Eligibility failures carry the full list of failed criteria.
func writeDomainError(w http.ResponseWriter, err error) {
	if ee, ok := domain.IsEligibilityError(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(dto.ErrorResponse{
			Error:   "member is not eligible",
			Reasons: ee.Reasons,
		})
		return
	}
	status := mapDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(w, status, message, "")
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrRepaymentNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrActiveLoanExists),
		errors.Is(err, domain.ErrLoanAlreadyDisbursed),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrMemberAlreadyFinal):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMemberNotActive),
		errors.Is(err, domain.ErrMemberNotApproved),
		errors.Is(err, domain.ErrAccountNotActive),
		errors.Is(err, domain.ErrLoanNotRepayable),
		errors.Is(err, domain.ErrNoOutstandingPayments),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidMemberName),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrPeriodTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
