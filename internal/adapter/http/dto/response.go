package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// MemberResponse represents a member in API responses.
type MemberResponse struct {
	ID           string     `json:"id"`
	MemberNumber string     `json:"member_number"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Status       string     `json:"status"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreditScore  int        `json:"credit_score"`
	KYCVerified  bool       `json:"kyc_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MemberFromDomain converts a domain member to a response.
func MemberFromDomain(m *domain.Member) *MemberResponse {
	return &MemberResponse{
		ID:           m.ID,
		MemberNumber: m.MemberNumber,
		Name:         m.Name,
		Phone:        m.Phone,
		Status:       string(m.Status),
		ApprovedAt:   m.ApprovedAt,
		CreditScore:  m.CreditScore,
		KYCVerified:  m.KYCVerified,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// MembersFromDomain converts domain members to responses.
func MembersFromDomain(members []*domain.Member) []*MemberResponse {
	result := make([]*MemberResponse, len(members))
	for i, m := range members {
		result[i] = MemberFromDomain(m)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	MemberID       string          `json:"member_id"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Balance        decimal.Decimal `json:"balance"`
	InterestEarned decimal.Decimal `json:"interest_earned"`
	LastInterestAt *time.Time      `json:"last_interest_at,omitempty"`
	TermMonths     *int            `json:"term_months,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		MemberID:       a.MemberID,
		Type:           string(a.Type),
		Status:         string(a.Status),
		Balance:        a.Balance,
		InterestEarned: a.InterestEarned,
		LastInterestAt: a.LastInterestAt,
		TermMonths:     a.TermMonths,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"member_id"`
	AccountID     *string         `json:"account_id,omitempty"`
	LoanID        *string         `json:"loan_id,omitempty"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain ledger entry to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		MemberID:      t.MemberID,
		AccountID:     t.AccountID,
		LoanID:        t.LoanID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Reference:     t.Reference,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain ledger entries to responses.
func TransactionsFromDomain(entries []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, t := range entries {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID                 string          `json:"id"`
	MemberID           string          `json:"member_id"`
	LoanNumber         string          `json:"loan_number"`
	Principal          decimal.Decimal `json:"principal"`
	AnnualRate         decimal.Decimal `json:"annual_rate"`
	ProcessingFee      decimal.Decimal `json:"processing_fee"`
	InsuranceFee       decimal.Decimal `json:"insurance_fee"`
	PeriodMonths       int             `json:"period_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	Status             string          `json:"status"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt        *time.Time      `json:"disbursed_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:                 l.ID,
		MemberID:           l.MemberID,
		LoanNumber:         l.LoanNumber,
		Principal:          l.Principal,
		AnnualRate:         l.AnnualRate,
		ProcessingFee:      l.ProcessingFee,
		InsuranceFee:       l.InsuranceFee,
		PeriodMonths:       l.PeriodMonths,
		MonthlyPayment:     l.MonthlyPayment,
		TotalAmount:        l.TotalAmount,
		OutstandingBalance: l.OutstandingBalance,
		Status:             string(l.Status),
		ApprovedAt:         l.ApprovedAt,
		DisbursedAt:        l.DisbursedAt,
		CompletedAt:        l.CompletedAt,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// RepaymentResponse represents a schedule installment in API responses.
type RepaymentResponse struct {
	ID              string          `json:"id"`
	LoanID          string          `json:"loan_id"`
	Sequence        int             `json:"sequence"`
	DueDate         time.Time       `json:"due_date"`
	AmountDue       decimal.Decimal `json:"amount_due"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Status          string          `json:"status"`
}

// RepaymentFromDomain converts a domain installment to a response.
func RepaymentFromDomain(r *domain.Repayment) *RepaymentResponse {
	return &RepaymentResponse{
		ID:              r.ID,
		LoanID:          r.LoanID,
		Sequence:        r.Sequence,
		DueDate:         r.DueDate,
		AmountDue:       r.AmountDue,
		PrincipalAmount: r.PrincipalAmount,
		InterestAmount:  r.InterestAmount,
		PenaltyAmount:   r.PenaltyAmount,
		AmountPaid:      r.AmountPaid,
		PaidAt:          r.PaidAt,
		Status:          string(r.Status),
	}
}

// RepaymentsFromDomain converts domain installments to responses.
func RepaymentsFromDomain(repayments []*domain.Repayment) []*RepaymentResponse {
	result := make([]*RepaymentResponse, len(repayments))
	for i, r := range repayments {
		result[i] = RepaymentFromDomain(r)
	}
	return result
}

// RepaymentResultResponse represents the outcome of a repayment.
type RepaymentResultResponse struct {
	Loan        *LoanResponse      `json:"loan"`
	Installment *RepaymentResponse `json:"installment"`
	Penalty     decimal.Decimal    `json:"penalty"`
	Outstanding decimal.Decimal    `json:"outstanding"`
	Completed   bool               `json:"completed"`
}

// RepaymentResultFromUseCase converts a repayment result to a response.
func RepaymentResultFromUseCase(r *usecase.RepaymentResult) *RepaymentResultResponse {
	return &RepaymentResultResponse{
		Loan:        LoanFromDomain(r.Loan),
		Installment: RepaymentFromDomain(r.Repayment),
		Penalty:     r.Penalty,
		Outstanding: r.Outstanding,
		Completed:   r.Completed,
	}
}

// EligibilityResponse represents an eligibility check result.
type EligibilityResponse struct {
	Eligible          bool            `json:"eligible"`
	FailedReasons     []string        `json:"failed_reasons,omitempty"`
	MaxEligibleAmount decimal.Decimal `json:"max_eligible_amount"`
}

// EligibilityFromDomain converts an eligibility result to a response.
func EligibilityFromDomain(r *domain.EligibilityResult) *EligibilityResponse {
	return &EligibilityResponse{
		Eligible:          r.Eligible,
		FailedReasons:     r.FailedReasons,
		MaxEligibleAmount: r.MaxEligibleAmount,
	}
}

// CreditScoreResponse represents a computed credit score.
type CreditScoreResponse struct {
	MemberID           string          `json:"member_id"`
	Score              int             `json:"score"`
	TotalSavings       decimal.Decimal `json:"total_savings"`
	MembershipMonths   int             `json:"membership_months"`
	RecentTransactions int             `json:"recent_transactions"`
	TotalRepayments    int             `json:"total_repayments"`
	OnTimeRepayments   int             `json:"on_time_repayments"`
	ComputedAt         time.Time       `json:"computed_at"`
}

// CreditScoreFromUseCase converts a score result to a response.
func CreditScoreFromUseCase(r *usecase.ScoreResult) *CreditScoreResponse {
	return &CreditScoreResponse{
		MemberID:           r.MemberID,
		Score:              r.Score,
		TotalSavings:       r.Profile.TotalSavings,
		MembershipMonths:   r.Profile.MembershipMonths,
		RecentTransactions: r.Profile.RecentTransactions,
		TotalRepayments:    r.Profile.TotalRepayments,
		OnTimeRepayments:   r.Profile.OnTimeRepayments,
		ComputedAt:         r.ComputedAt,
	}
}

// ScheduleEntryResponse represents a previewed installment.
type ScheduleEntryResponse struct {
	Sequence     int             `json:"sequence"`
	DueDate      time.Time       `json:"due_date"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	Principal    decimal.Decimal `json:"principal"`
	Interest     decimal.Decimal `json:"interest"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// ScheduleFromDomain converts schedule entries to responses.
func ScheduleFromDomain(entries []domain.ScheduleEntry) []ScheduleEntryResponse {
	result := make([]ScheduleEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = ScheduleEntryResponse{
			Sequence:     e.Sequence,
			DueDate:      e.DueDate,
			AmountDue:    e.AmountDue,
			Principal:    e.Principal,
			Interest:     e.Interest,
			BalanceAfter: e.BalanceAfter,
		}
	}
	return result
}

// InterestSweepResponse summarizes a daily interest crediting run.
type InterestSweepResponse struct {
	Credited      int             `json:"credited"`
	Skipped       int             `json:"skipped"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Errors        int             `json:"errors"`
}

// SweepResponse summarizes an overdue or default sweep.
type SweepResponse struct {
	Marked int `json:"marked"`
	Errors int `json:"errors"`
}

// RecomputeScoresResponse summarizes a score recompute run.
type RecomputeScoresResponse struct {
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// ListMembersResponse wraps a member listing.
type ListMembersResponse struct {
	Members []*MemberResponse `json:"members"`
	Total   int64             `json:"total"`
}

// ListLoansResponse wraps a loan listing.
type ListLoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int64           `json:"total"`
}

// ListTransactionsResponse wraps a ledger entry listing.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}
