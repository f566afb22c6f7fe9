package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// MemberRepository implements usecase.MemberRepository.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, member_number, name, phone, status, approved_at, credit_score, kyc_verified, created_at, updated_at`

// Create inserts a new member.
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, member_number, name, phone, status, approved_at, credit_score, kyc_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		member.ID,
		member.MemberNumber,
		member.Name,
		member.Phone,
		member.Status,
		timestamptzPtr(member.ApprovedAt),
		member.CreditScore,
		member.KYCVerified,
		timeToPgTimestamptz(member.CreatedAt),
		timeToPgTimestamptz(member.UpdatedAt),
	)

	return err
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	return scanMember(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a member by ID with a FOR UPDATE lock.
func (r *MemberRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`

	return scanMember(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus updates a member's lifecycle status and approval date.
func (r *MemberRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.MemberStatus, approvedAt *time.Time, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE members
		SET status = $2, approved_at = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, status, timestamptzPtr(approvedAt), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// UpdateCreditScore persists a recomputed credit score.
func (r *MemberRepository) UpdateCreditScore(ctx context.Context, id string, score int, updatedAt time.Time) error {
	query := `
		UPDATE members
		SET credit_score = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, score, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// UpdateKYC updates a member's KYC verification flag.
func (r *MemberRepository) UpdateKYC(ctx context.Context, id string, verified bool, updatedAt time.Time) error {
	query := `
		UPDATE members
		SET kyc_verified = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, verified, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// List retrieves members with pagination, newest first.
func (r *MemberRepository) List(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// ListIDs retrieves every member ID, for batch sweeps.
func (r *MemberRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var member domain.Member
	err := row.Scan(
		&member.ID,
		&member.MemberNumber,
		&member.Name,
		&member.Phone,
		&member.Status,
		&member.ApprovedAt,
		&member.CreditScore,
		&member.KYCVerified,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}

	return &member, nil
}
