package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

type memberServiceStub struct {
	registerFn  func(ctx context.Context, input usecase.RegisterMemberInput) (*domain.Member, error)
	approveFn   func(ctx context.Context, id string) (*domain.Member, error)
	suspendFn   func(ctx context.Context, id string) (*domain.Member, error)
	verifyKYCFn func(ctx context.Context, id string) error
	getFn       func(ctx context.Context, id string) (*domain.Member, error)
	listFn      func(ctx context.Context, input usecase.ListMembersInput) ([]*domain.Member, error)
}

func (s *memberServiceStub) RegisterMember(ctx context.Context, input usecase.RegisterMemberInput) (*domain.Member, error) {
	return s.registerFn(ctx, input)
}

func (s *memberServiceStub) ApproveMember(ctx context.Context, id string) (*domain.Member, error) {
	return s.approveFn(ctx, id)
}

func (s *memberServiceStub) SuspendMember(ctx context.Context, id string) (*domain.Member, error) {
	return s.suspendFn(ctx, id)
}

func (s *memberServiceStub) VerifyKYC(ctx context.Context, id string) error {
	return s.verifyKYCFn(ctx, id)
}

func (s *memberServiceStub) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	return s.getFn(ctx, id)
}

func (s *memberServiceStub) ListMembers(ctx context.Context, input usecase.ListMembersInput) ([]*domain.Member, error) {
	return s.listFn(ctx, input)
}

func TestMemberHandler_Register_Success(t *testing.T) {
	member := &domain.Member{
		ID:           "m1",
		MemberNumber: "MBR-0001",
		Name:         "Amina Okello",
		Phone:        "+256701234567",
		Status:       domain.MemberStatusPending,
		CreditScore:  domain.CreditScoreBase,
	}

	var captured usecase.RegisterMemberInput
	handler := NewMemberHandler(&memberServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterMemberInput) (*domain.Member, error) {
			captured = input
			return member, nil
		},
	})

	body, _ := json.Marshal(dto.RegisterMemberRequest{
		Name:  "Amina Okello",
		Phone: "+256701234567",
	})

	req := httptest.NewRequest(http.MethodPost, "/members", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "Amina Okello" || captured.Phone != "+256701234567" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.MemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected pending status, got %s", resp.Status)
	}
}

func TestMemberHandler_Register_InvalidPhone(t *testing.T) {
	handler := NewMemberHandler(&memberServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterMemberInput) (*domain.Member, error) {
			return nil, domain.ErrInvalidPhone
		},
	})

	body, _ := json.Marshal(dto.RegisterMemberRequest{Name: "Amina", Phone: "12345"})
	req := httptest.NewRequest(http.MethodPost, "/members", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMemberHandler_Approve(t *testing.T) {
	handler := NewMemberHandler(&memberServiceStub{
		approveFn: func(ctx context.Context, id string) (*domain.Member, error) {
			if id != "m1" {
				t.Fatalf("expected id m1, got %s", id)
			}
			return &domain.Member{ID: "m1", Status: domain.MemberStatusActive}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/members/m1/approve", nil)
	req = setChiURLParam(req, "id", "m1")
	rec := httptest.NewRecorder()

	handler.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.MemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "active" {
		t.Fatalf("expected active status, got %s", resp.Status)
	}
}

func TestMemberHandler_Approve_InvalidTransition(t *testing.T) {
	handler := NewMemberHandler(&memberServiceStub{
		approveFn: func(ctx context.Context, id string) (*domain.Member, error) {
			return nil, domain.ErrMemberAlreadyFinal
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/members/m1/approve", nil)
	req = setChiURLParam(req, "id", "m1")
	rec := httptest.NewRecorder()

	handler.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestMemberHandler_Suspend(t *testing.T) {
	handler := NewMemberHandler(&memberServiceStub{
		suspendFn: func(ctx context.Context, id string) (*domain.Member, error) {
			return &domain.Member{ID: "m1", Status: domain.MemberStatusSuspended}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/members/m1/suspend", nil)
	req = setChiURLParam(req, "id", "m1")
	rec := httptest.NewRecorder()

	handler.Suspend(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMemberHandler_VerifyKYC(t *testing.T) {
	var verified bool
	handler := NewMemberHandler(&memberServiceStub{
		verifyKYCFn: func(ctx context.Context, id string) error {
			verified = true
			return nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Member, error) {
			return &domain.Member{ID: "m1", KYCVerified: true}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/members/m1/kyc/verify", nil)
	req = setChiURLParam(req, "id", "m1")
	rec := httptest.NewRecorder()

	handler.VerifyKYC(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !verified {
		t.Fatal("expected VerifyKYC to be called")
	}

	var resp dto.MemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.KYCVerified {
		t.Fatalf("expected kyc_verified true, got %+v", resp)
	}
}

func TestMemberHandler_Get_NotFound(t *testing.T) {
	handler := NewMemberHandler(&memberServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Member, error) {
			return nil, domain.ErrMemberNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/members/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMemberHandler_List(t *testing.T) {
	handler := NewMemberHandler(&memberServiceStub{
		listFn: func(ctx context.Context, input usecase.ListMembersInput) ([]*domain.Member, error) {
			if input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got %+v", input)
			}
			return []*domain.Member{{ID: "m1"}, {ID: "m2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/members?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListMembersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(resp.Members))
	}
}
