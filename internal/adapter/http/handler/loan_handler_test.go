package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

type loanServiceStub struct {
	checkEligibilityFn func(ctx context.Context, memberID string, amount decimal.Decimal) (*domain.EligibilityResult, error)
	applyFn            func(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error)
	approveFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	disburseFn         func(ctx context.Context, input usecase.DisburseLoanInput) (*domain.Loan, error)
	repayFn            func(ctx context.Context, input usecase.RepaymentInput) (*usecase.RepaymentResult, error)
	getFn              func(ctx context.Context, id string) (*domain.Loan, error)
	scheduleFn         func(ctx context.Context, loanID string) ([]*domain.Repayment, error)
	listByMemberFn     func(ctx context.Context, input usecase.ListLoansByMemberInput) ([]*domain.Loan, error)
	previewFn          func(principal decimal.Decimal, months int) ([]domain.ScheduleEntry, error)
}

func (s *loanServiceStub) CheckEligibility(ctx context.Context, memberID string, amount decimal.Decimal) (*domain.EligibilityResult, error) {
	return s.checkEligibilityFn(ctx, memberID, amount)
}

func (s *loanServiceStub) ApplyLoan(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error) {
	return s.applyFn(ctx, input)
}

func (s *loanServiceStub) ApproveLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.approveFn(ctx, loanID)
}

func (s *loanServiceStub) DisburseLoan(ctx context.Context, input usecase.DisburseLoanInput) (*domain.Loan, error) {
	return s.disburseFn(ctx, input)
}

func (s *loanServiceStub) ProcessRepayment(ctx context.Context, input usecase.RepaymentInput) (*usecase.RepaymentResult, error) {
	return s.repayFn(ctx, input)
}

func (s *loanServiceStub) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.getFn(ctx, id)
}

func (s *loanServiceStub) GetSchedule(ctx context.Context, loanID string) ([]*domain.Repayment, error) {
	return s.scheduleFn(ctx, loanID)
}

func (s *loanServiceStub) ListLoansByMember(ctx context.Context, input usecase.ListLoansByMemberInput) ([]*domain.Loan, error) {
	return s.listByMemberFn(ctx, input)
}

func (s *loanServiceStub) PreviewSchedule(principal decimal.Decimal, months int) ([]domain.ScheduleEntry, error) {
	return s.previewFn(principal, months)
}

func TestLoanHandler_CheckEligibility(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		checkEligibilityFn: func(ctx context.Context, memberID string, amount decimal.Decimal) (*domain.EligibilityResult, error) {
			if memberID != "m1" {
				t.Fatalf("expected member m1, got %s", memberID)
			}
			return &domain.EligibilityResult{
				Eligible:          true,
				MaxEligibleAmount: decimal.NewFromInt(1800000),
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CheckEligibilityRequest{
		MemberID: "m1",
		Amount:   decimal.NewFromInt(1500000),
	})

	req := httptest.NewRequest(http.MethodPost, "/loans/eligibility", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CheckEligibility(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.EligibilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Eligible {
		t.Fatalf("expected eligible result, got %+v", resp)
	}
	if !resp.MaxEligibleAmount.Equal(decimal.NewFromInt(1800000)) {
		t.Fatalf("expected max 1800000, got %s", resp.MaxEligibleAmount)
	}
}

func TestLoanHandler_Apply_Success(t *testing.T) {
	loan := &domain.Loan{
		ID:         "ln-1",
		MemberID:   "m1",
		LoanNumber: "LN-0001",
		Principal:  decimal.NewFromInt(1000000),
		Status:     domain.LoanStatusPending,
	}

	var captured usecase.ApplyLoanInput
	handler := NewLoanHandler(&loanServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error) {
			captured = input
			return loan, nil
		},
	})

	body, _ := json.Marshal(dto.ApplyLoanRequest{
		MemberID:     "m1",
		Amount:       decimal.NewFromInt(1000000),
		PeriodMonths: 12,
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.MemberID != "m1" || captured.PeriodMonths != 12 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestLoanHandler_Apply_Ineligible(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error) {
			return nil, &domain.EligibilityError{
				Reasons: []string{"savings balance is below the minimum"},
			}
		},
	})

	body, _ := json.Marshal(dto.ApplyLoanRequest{
		MemberID:     "m1",
		Amount:       decimal.NewFromInt(1000000),
		PeriodMonths: 12,
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if len(resp.Reasons) != 1 {
		t.Fatalf("expected failed reasons in response, got %+v", resp)
	}
}

func TestLoanHandler_Apply_OpenLoanConflict(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error) {
			return nil, domain.ErrActiveLoanExists
		},
	})

	body, _ := json.Marshal(dto.ApplyLoanRequest{
		MemberID:     "m1",
		Amount:       decimal.NewFromInt(1000000),
		PeriodMonths: 12,
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLoanHandler_Disburse_WithAccount(t *testing.T) {
	var captured usecase.DisburseLoanInput
	handler := NewLoanHandler(&loanServiceStub{
		disburseFn: func(ctx context.Context, input usecase.DisburseLoanInput) (*domain.Loan, error) {
			captured = input
			return &domain.Loan{ID: "ln-1", Status: domain.LoanStatusActive}, nil
		},
	})

	body, _ := json.Marshal(dto.DisburseLoanRequest{AccountID: "acc-1"})
	req := httptest.NewRequest(http.MethodPost, "/loans/ln-1/disburse", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "ln-1")
	rec := httptest.NewRecorder()

	handler.Disburse(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.LoanID != "ln-1" || captured.AccountID != "acc-1" {
		t.Fatalf("expected loan and account from request, got %+v", captured)
	}
}

func TestLoanHandler_Disburse_EmptyBody(t *testing.T) {
	var captured usecase.DisburseLoanInput
	handler := NewLoanHandler(&loanServiceStub{
		disburseFn: func(ctx context.Context, input usecase.DisburseLoanInput) (*domain.Loan, error) {
			captured = input
			return &domain.Loan{ID: "ln-1", Status: domain.LoanStatusActive}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/loans/ln-1/disburse", nil)
	req = setChiURLParam(req, "id", "ln-1")
	rec := httptest.NewRecorder()

	handler.Disburse(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with empty body, got %d", rec.Code)
	}

	if captured.AccountID != "" {
		t.Fatalf("expected empty account ID, got %q", captured.AccountID)
	}
}

func TestLoanHandler_Disburse_AlreadyDisbursed(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		disburseFn: func(ctx context.Context, input usecase.DisburseLoanInput) (*domain.Loan, error) {
			return nil, domain.ErrLoanAlreadyDisbursed
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/loans/ln-1/disburse", nil)
	req = setChiURLParam(req, "id", "ln-1")
	rec := httptest.NewRecorder()

	handler.Disburse(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLoanHandler_Repay(t *testing.T) {
	result := &usecase.RepaymentResult{
		Loan:        &domain.Loan{ID: "ln-1", Status: domain.LoanStatusActive},
		Repayment:   &domain.Repayment{ID: "rp-1", LoanID: "ln-1", Sequence: 1},
		Penalty:     decimal.Zero,
		Outstanding: decimal.NewFromInt(911151),
	}

	var captured usecase.RepaymentInput
	handler := NewLoanHandler(&loanServiceStub{
		repayFn: func(ctx context.Context, input usecase.RepaymentInput) (*usecase.RepaymentResult, error) {
			captured = input
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.RepaymentRequest{
		Amount:    decimal.RequireFromString("88848.79"),
		Reference: "mobile money",
	})

	req := httptest.NewRequest(http.MethodPost, "/loans/ln-1/repayments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "ln-1")
	rec := httptest.NewRecorder()

	handler.Repay(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.LoanID != "ln-1" {
		t.Fatalf("expected loan from path, got %+v", captured)
	}

	var resp dto.RepaymentResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Outstanding.Equal(decimal.NewFromInt(911151)) {
		t.Fatalf("expected outstanding 911151, got %s", resp.Outstanding)
	}
}

func TestLoanHandler_Repay_NotRepayable(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		repayFn: func(ctx context.Context, input usecase.RepaymentInput) (*usecase.RepaymentResult, error) {
			return nil, domain.ErrLoanNotRepayable
		},
	})

	body, _ := json.Marshal(dto.RepaymentRequest{Amount: decimal.NewFromInt(1000)})
	req := httptest.NewRequest(http.MethodPost, "/loans/ln-1/repayments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "ln-1")
	rec := httptest.NewRecorder()

	handler.Repay(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLoanHandler_Schedule(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		scheduleFn: func(ctx context.Context, loanID string) ([]*domain.Repayment, error) {
			return []*domain.Repayment{
				{ID: "rp-1", Sequence: 1},
				{ID: "rp-2", Sequence: 2},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/loans/ln-1/schedule", nil)
	req = setChiURLParam(req, "id", "ln-1")
	rec := httptest.NewRecorder()

	handler.Schedule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.RepaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 installments, got %d", len(resp))
	}
}

func TestLoanHandler_PreviewSchedule(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		previewFn: func(principal decimal.Decimal, months int) ([]domain.ScheduleEntry, error) {
			if !principal.Equal(decimal.NewFromInt(1000000)) || months != 12 {
				t.Fatalf("expected 1000000 over 12 months, got %s over %d", principal, months)
			}
			return []domain.ScheduleEntry{{Sequence: 1}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/loans/schedule/preview?principal=1000000&months=12", nil)
	rec := httptest.NewRecorder()

	handler.PreviewSchedule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLoanHandler_PreviewSchedule_BadPrincipal(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		previewFn: func(principal decimal.Decimal, months int) ([]domain.ScheduleEntry, error) {
			t.Fatal("PreviewSchedule should not be called for invalid principal")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/loans/schedule/preview?principal=abc&months=12", nil)
	rec := httptest.NewRecorder()

	handler.PreviewSchedule(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoanHandler_ListByMember(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		listByMemberFn: func(ctx context.Context, input usecase.ListLoansByMemberInput) ([]*domain.Loan, error) {
			if input.MemberID != "m1" {
				t.Fatalf("expected member m1, got %s", input.MemberID)
			}
			return []*domain.Loan{{ID: "ln-1"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/members/m1/loans", nil)
	req = setChiURLParam(req, "id", "m1")
	rec := httptest.NewRecorder()

	handler.ListByMember(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListLoansResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Loans) != 1 {
		t.Fatalf("expected 1 loan, got %d", len(resp.Loans))
	}
}
