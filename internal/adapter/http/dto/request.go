package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// RegisterMemberRequest represents a request to register a member.
type RegisterMemberRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterMemberRequest) ToUseCaseInput() usecase.RegisterMemberInput {
	return usecase.RegisterMemberInput{
		Name:  r.Name,
		Phone: r.Phone,
	}
}

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	MemberID   string `json:"member_id"`
	Type       string `json:"type"`
	TermMonths *int   `json:"term_months,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		MemberID:   r.MemberID,
		Type:       domain.AccountType(r.Type),
		TermMonths: r.TermMonths,
	}
}

// MoveFundsRequest represents a deposit or withdrawal request.
type MoveFundsRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *MoveFundsRequest) ToUseCaseInput(accountID string) usecase.MoveFundsInput {
	return usecase.MoveFundsInput{
		AccountID: accountID,
		Amount:    r.Amount,
		Reference: r.Reference,
	}
}

// CheckEligibilityRequest represents a loan eligibility check.
type CheckEligibilityRequest struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// ApplyLoanRequest represents a loan application.
type ApplyLoanRequest struct {
	MemberID     string          `json:"member_id"`
	Amount       decimal.Decimal `json:"amount"`
	PeriodMonths int             `json:"period_months"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyLoanRequest) ToUseCaseInput() usecase.ApplyLoanInput {
	return usecase.ApplyLoanInput{
		MemberID:     r.MemberID,
		Amount:       r.Amount,
		PeriodMonths: r.PeriodMonths,
	}
}

// DisburseLoanRequest represents a disbursement request. AccountID is
// optional; when set the principal is credited to that savings account.
type DisburseLoanRequest struct {
	AccountID string `json:"account_id,omitempty"`
}

// RepaymentRequest represents a repayment against a loan.
type RepaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input for the given loan.
func (r *RepaymentRequest) ToUseCaseInput(loanID string) usecase.RepaymentInput {
	return usecase.RepaymentInput{
		LoanID:    loanID,
		Amount:    r.Amount,
		Reference: r.Reference,
	}
}
