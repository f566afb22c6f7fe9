package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/infrastructure/metrics"
)

// MemberUseCase handles member lifecycle business logic.
type MemberUseCase struct {
	txManager  TransactionManager
	memberRepo MemberRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewMemberUseCase creates a new MemberUseCase. The metrics argument
// may be nil, in which case no counters are recorded.
func NewMemberUseCase(txManager TransactionManager, memberRepo MemberRepository, idGen IDGenerator, m *metrics.Metrics) *MemberUseCase {
	return &MemberUseCase{
		txManager:  txManager,
		memberRepo: memberRepo,
		idGen:      idGen,
		metrics:    m,
	}
}

// RegisterMemberInput represents input for registering a member.
type RegisterMemberInput struct {
	Name  string
	Phone string
}

// RegisterMember creates a new member in pending status. The member
// must be approved before accounts or loans can be opened.
func (uc *MemberUseCase) RegisterMember(ctx context.Context, input RegisterMemberInput) (*domain.Member, error) {
	if err := domain.ValidateMemberName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePhone(input.Phone); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uc.idGen.Generate()

	member := &domain.Member{
		ID:           id,
		MemberNumber: memberNumber(id),
		Name:         input.Name,
		Phone:        input.Phone,
		Status:       domain.MemberStatusPending,
		CreditScore:  domain.CreditScoreBase,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MembersRegistered.Inc()
	}

	return member, nil
}

// ApproveMember transitions a pending member to active and stamps the
// approval date that membership duration is measured from.
func (uc *MemberUseCase) ApproveMember(ctx context.Context, id string) (*domain.Member, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	member, err := uc.memberRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := member.Approve(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member.Status = domain.MemberStatusActive
	member.ApprovedAt = &now
	member.UpdatedAt = now

	if err := uc.memberRepo.UpdateStatus(ctx, tx, id, member.Status, member.ApprovedAt, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MembersApproved.Inc()
	}

	return member, nil
}

// SuspendMember transitions an active member to suspended.
func (uc *MemberUseCase) SuspendMember(ctx context.Context, id string) (*domain.Member, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	member, err := uc.memberRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := member.Suspend(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member.Status = domain.MemberStatusSuspended
	member.UpdatedAt = now

	if err := uc.memberRepo.UpdateStatus(ctx, tx, id, member.Status, member.ApprovedAt, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MembersSuspended.Inc()
	}

	return member, nil
}

// VerifyKYC marks a member as KYC verified.
func (uc *MemberUseCase) VerifyKYC(ctx context.Context, id string) error {
	if _, err := uc.memberRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.memberRepo.UpdateKYC(ctx, id, true, time.Now().UTC())
}

// GetMember retrieves a member by ID.
func (uc *MemberUseCase) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	return uc.memberRepo.GetByID(ctx, id)
}

// ListMembersInput represents input for listing members.
type ListMembersInput struct {
	Limit  int
	Offset int
}

// ListMembers lists members with pagination.
func (uc *MemberUseCase) ListMembers(ctx context.Context, input ListMembersInput) ([]*domain.Member, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.memberRepo.List(ctx, limit, offset)
}

// memberNumber derives the human-readable member number from the ULID.
func memberNumber(id string) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return fmt.Sprintf("MBR-%s", suffix)
}
