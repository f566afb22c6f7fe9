package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mukwano/sacco/internal/adapter/http/dto"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// MemberService defines the behavior needed by MemberHandler.
type MemberService interface {
	RegisterMember(ctx context.Context, input usecase.RegisterMemberInput) (*domain.Member, error)
	ApproveMember(ctx context.Context, id string) (*domain.Member, error)
	SuspendMember(ctx context.Context, id string) (*domain.Member, error)
	VerifyKYC(ctx context.Context, id string) error
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	ListMembers(ctx context.Context, input usecase.ListMembersInput) ([]*domain.Member, error)
}

// MemberHandler handles member-related HTTP requests.
type MemberHandler struct {
	memberUC MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberUC MemberService) *MemberHandler {
	return &MemberHandler{memberUC: memberUC}
}

// Register registers a new member in pending status.
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	member, err := h.memberUC.RegisterMember(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MemberFromDomain(member))
}

// Approve activates a pending member.
func (h *MemberHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	member, err := h.memberUC.ApproveMember(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// Suspend suspends an active member.
func (h *MemberHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	member, err := h.memberUC.SuspendMember(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// VerifyKYC marks a member's KYC as verified.
func (h *MemberHandler) VerifyKYC(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	if err := h.memberUC.VerifyKYC(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	member, err := h.memberUC.GetMember(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// Get retrieves a member by ID.
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	member, err := h.memberUC.GetMember(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// List lists members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	members, err := h.memberUC.ListMembers(r.Context(), usecase.ListMembersInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMembersResponse{
		Members: dto.MembersFromDomain(members),
		Total:   int64(len(members)),
	})
}
