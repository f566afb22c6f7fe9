package domain

import (
	"time"
)

// MemberStatus is the lifecycle status of a cooperative member.
type MemberStatus string

const (
	MemberStatusPending   MemberStatus = "pending"
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
	MemberStatusExited    MemberStatus = "exited"
)

// Member represents a cooperative member who owns accounts and loans.
type Member struct {
	ID           string
	MemberNumber string
	Name         string
	Phone        string
	Status       MemberStatus
	ApprovedAt   *time.Time
	CreditScore  int
	KYCVerified  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MembershipMonths returns whole months elapsed since approval, or 0
// for a member that was never approved.
func (m *Member) MembershipMonths(now time.Time) int {
	if m.ApprovedAt == nil || m.ApprovedAt.After(now) {
		return 0
	}

	months := (now.Year()-m.ApprovedAt.Year())*12 + int(now.Month()) - int(m.ApprovedAt.Month())
	if now.Day() < m.ApprovedAt.Day() {
		months--
	}

	if months < 0 {
		return 0
	}

	return months
}

// CanBorrow reports whether the member can enter the loan workflow at all.
func (m *Member) CanBorrow() bool {
	return m.Status == MemberStatusActive
}

// Approve validates the pending -> active transition.
func (m *Member) Approve() error {
	if m.Status != MemberStatusPending {
		return ErrMemberAlreadyFinal
	}
	return nil
}

// Suspend validates the active -> suspended transition.
func (m *Member) Suspend() error {
	if m.Status != MemberStatusActive {
		return ErrMemberNotActive
	}
	return nil
}
