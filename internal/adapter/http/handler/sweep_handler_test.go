package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/usecase"
)

type interestSweeperStub struct {
	fn func(ctx context.Context) (*usecase.InterestSweepResult, error)
}

func (s *interestSweeperStub) CreditDailyInterest(ctx context.Context) (*usecase.InterestSweepResult, error) {
	return s.fn(ctx)
}

type loanSweeperStub struct {
	overdueFn   func(ctx context.Context) (*usecase.SweepResult, error)
	defaultedFn func(ctx context.Context) (*usecase.SweepResult, error)
}

func (s *loanSweeperStub) MarkOverdueLoans(ctx context.Context) (*usecase.SweepResult, error) {
	return s.overdueFn(ctx)
}

func (s *loanSweeperStub) MarkDefaultedLoans(ctx context.Context) (*usecase.SweepResult, error) {
	return s.defaultedFn(ctx)
}

type scoreSweeperStub struct {
	fn func(ctx context.Context) (*usecase.RecomputeResult, error)
}

func (s *scoreSweeperStub) RecomputeAllScores(ctx context.Context) (*usecase.RecomputeResult, error) {
	return s.fn(ctx)
}

func TestSweepHandler_Interest(t *testing.T) {
	handler := NewSweepHandler(&interestSweeperStub{
		fn: func(ctx context.Context) (*usecase.InterestSweepResult, error) {
			return &usecase.InterestSweepResult{
				Credited:      3,
				Skipped:       1,
				TotalInterest: decimal.NewFromInt(150),
				Errors:        []usecase.AccountError{{AccountID: "acc-9", Err: errors.New("boom")}},
			}, nil
		},
	}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/sweeps/interest", nil)
	rec := httptest.NewRecorder()

	handler.Interest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InterestSweepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Credited != 3 || resp.Skipped != 1 || resp.Errors != 1 {
		t.Fatalf("expected credited=3 skipped=1 errors=1, got %+v", resp)
	}
	if !resp.TotalInterest.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected total interest 150, got %s", resp.TotalInterest)
	}
}

func TestSweepHandler_Overdue(t *testing.T) {
	handler := NewSweepHandler(nil, &loanSweeperStub{
		overdueFn: func(ctx context.Context) (*usecase.SweepResult, error) {
			return &usecase.SweepResult{Marked: 2}, nil
		},
		defaultedFn: func(ctx context.Context) (*usecase.SweepResult, error) {
			return &usecase.SweepResult{Marked: 1}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/sweeps/overdue", nil)
	rec := httptest.NewRecorder()

	handler.Overdue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]dto.SweepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["overdue"].Marked != 2 || resp["defaulted"].Marked != 1 {
		t.Fatalf("expected overdue=2 defaulted=1, got %+v", resp)
	}
}

func TestSweepHandler_Overdue_SweepFails(t *testing.T) {
	handler := NewSweepHandler(nil, &loanSweeperStub{
		overdueFn: func(ctx context.Context) (*usecase.SweepResult, error) {
			return nil, errors.New("db down")
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/sweeps/overdue", nil)
	rec := httptest.NewRecorder()

	handler.Overdue(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestSweepHandler_CreditScores(t *testing.T) {
	handler := NewSweepHandler(nil, nil, &scoreSweeperStub{
		fn: func(ctx context.Context) (*usecase.RecomputeResult, error) {
			return &usecase.RecomputeResult{Updated: 10}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/sweeps/credit-scores", nil)
	rec := httptest.NewRecorder()

	handler.CreditScores(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.RecomputeScoresResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Updated != 10 || resp.Errors != 0 {
		t.Fatalf("expected updated=10 errors=0, got %+v", resp)
	}
}
