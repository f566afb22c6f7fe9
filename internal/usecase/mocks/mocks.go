package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/usecase"
)

// ErrCacheMiss is returned by MockCache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// MockMemberRepository is a mock implementation of MemberRepository.
type MockMemberRepository struct {
	mu      sync.RWMutex
	members map[string]*domain.Member

	CreateFunc            func(ctx context.Context, member *domain.Member) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Member, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error)
	UpdateStatusFunc      func(ctx context.Context, tx usecase.Transaction, id string, status domain.MemberStatus, approvedAt *time.Time, updatedAt time.Time) error
	UpdateCreditScoreFunc func(ctx context.Context, id string, score int, updatedAt time.Time) error
	UpdateKYCFunc         func(ctx context.Context, id string, verified bool, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Member, error)
	ListIDsFunc           func(ctx context.Context) ([]string, error)
}

func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{members: make(map[string]*domain.Member)}
}

// Add seeds a member into the in-memory store.
func (m *MockMemberRepository) Add(member *domain.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, member)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
	return nil
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, domain.ErrMemberNotFound
}

func (m *MockMemberRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockMemberRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.MemberStatus, approvedAt *time.Time, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, approvedAt, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		member.Status = status
		member.ApprovedAt = approvedAt
		member.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockMemberRepository) UpdateCreditScore(ctx context.Context, id string, score int, updatedAt time.Time) error {
	if m.UpdateCreditScoreFunc != nil {
		return m.UpdateCreditScoreFunc(ctx, id, score, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		member.CreditScore = score
		member.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockMemberRepository) UpdateKYC(ctx context.Context, id string, verified bool, updatedAt time.Time) error {
	if m.UpdateKYCFunc != nil {
		return m.UpdateKYCFunc(ctx, id, verified, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		member.KYCVerified = verified
		member.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockMemberRepository) List(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var members []*domain.Member
	for _, member := range m.members {
		members = append(members, member)
	}
	return members, nil
}

func (m *MockMemberRepository) ListIDs(ctx context.Context) ([]string, error) {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.members))
	for id := range m.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc              func(ctx context.Context, account *domain.Account) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc       func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateInterestFunc      func(ctx context.Context, tx usecase.Transaction, id string, balance, interestEarned decimal.Decimal, creditedAt time.Time) error
	ListByMemberFunc        func(ctx context.Context, memberID string) ([]*domain.Account, error)
	ListInterestBearingFunc func(ctx context.Context) ([]*domain.Account, error)
	TotalSavingsFunc        func(ctx context.Context, memberID string) (decimal.Decimal, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// Add seeds an account into the in-memory store.
func (m *MockAccountRepository) Add(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if account, ok := m.accounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		account.Balance = balance
		account.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) UpdateInterest(ctx context.Context, tx usecase.Transaction, id string, balance, interestEarned decimal.Decimal, creditedAt time.Time) error {
	if m.UpdateInterestFunc != nil {
		return m.UpdateInterestFunc(ctx, tx, id, balance, interestEarned, creditedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		account.Balance = balance
		account.InterestEarned = interestEarned
		account.LastInterestAt = &creditedAt
		account.UpdatedAt = creditedAt
	}
	return nil
}

func (m *MockAccountRepository) ListByMember(ctx context.Context, memberID string) ([]*domain.Account, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, memberID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, account := range m.accounts {
		if account.MemberID == memberID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListInterestBearing(ctx context.Context) ([]*domain.Account, error) {
	if m.ListInterestBearingFunc != nil {
		return m.ListInterestBearingFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, account := range m.accounts {
		if account.EarnsDailyInterest() {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) TotalSavings(ctx context.Context, memberID string) (decimal.Decimal, error) {
	if m.TotalSavingsFunc != nil {
		return m.TotalSavingsFunc(ctx, memberID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, account := range m.accounts {
		if account.MemberID == memberID && account.Type == domain.AccountTypeSavings {
			total = total.Add(account.Balance)
		}
	}
	return total, nil
}

// MockLoanRepository is a mock implementation of LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error)
	UpdateStatusFunc      func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	UpdateOutstandingFunc func(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, completedAt *time.Time, updatedAt time.Time) error
	ListByMemberFunc      func(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error)
	ListByStatusFunc      func(ctx context.Context, status domain.LoanStatus, limit, offset int) ([]*domain.Loan, error)
	CountOpenByMemberFunc func(ctx context.Context, memberID string) (int, error)
	StatusCountsFunc      func(ctx context.Context, memberID string) (map[domain.LoanStatus]int, error)
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{loans: make(map[string]*domain.Loan)}
}

// Add seeds a loan into the in-memory store.
func (m *MockLoanRepository) Add(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
}

func (m *MockLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.loans {
		if existing.MemberID != loan.MemberID {
			continue
		}
		for _, s := range domain.OpenLoanStatuses {
			if existing.Status == s {
				return domain.ErrActiveLoanExists
			}
		}
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) UpdateOutstanding(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, completedAt *time.Time, updatedAt time.Time) error {
	if m.UpdateOutstandingFunc != nil {
		return m.UpdateOutstandingFunc(ctx, tx, id, outstanding, status, completedAt, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan, ok := m.loans[id]; ok {
		loan.OutstandingBalance = outstanding
		loan.Status = status
		loan.CompletedAt = completedAt
		loan.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, memberID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range m.loans {
		if loan.MemberID == memberID {
			loans = append(loans, loan)
		}
	}
	return loans, nil
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus, limit, offset int) ([]*domain.Loan, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range m.loans {
		if loan.Status == status {
			loans = append(loans, loan)
		}
	}
	return loans, nil
}

func (m *MockLoanRepository) CountOpenByMember(ctx context.Context, memberID string) (int, error) {
	if m.CountOpenByMemberFunc != nil {
		return m.CountOpenByMemberFunc(ctx, memberID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, loan := range m.loans {
		if loan.MemberID != memberID {
			continue
		}
		for _, s := range domain.OpenLoanStatuses {
			if loan.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *MockLoanRepository) StatusCounts(ctx context.Context, memberID string) (map[domain.LoanStatus]int, error) {
	if m.StatusCountsFunc != nil {
		return m.StatusCountsFunc(ctx, memberID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.LoanStatus]int)
	for _, loan := range m.loans {
		if loan.MemberID == memberID {
			counts[loan.Status]++
		}
	}
	return counts, nil
}

// MockRepaymentRepository is a mock implementation of RepaymentRepository.
type MockRepaymentRepository struct {
	mu         sync.RWMutex
	repayments map[string]*domain.Repayment

	CreateBatchFunc                func(ctx context.Context, tx usecase.Transaction, repayments []*domain.Repayment) error
	ExistsForLoanFunc              func(ctx context.Context, tx usecase.Transaction, loanID string) (bool, error)
	ListByLoanFunc                 func(ctx context.Context, loanID string) ([]*domain.Repayment, error)
	GetEarliestUnpaidForUpdateFunc func(ctx context.Context, tx usecase.Transaction, loanID string) (*domain.Repayment, error)
	UpdatePaymentFunc              func(ctx context.Context, tx usecase.Transaction, repayment *domain.Repayment) error
	LoanIDsWithPastDueFunc         func(ctx context.Context, asOf time.Time) ([]string, error)
	EarliestUnpaidDueDateFunc      func(ctx context.Context, loanID string) (*time.Time, error)
	StatsFunc                      func(ctx context.Context, memberID string) (int, int, error)
}

func NewMockRepaymentRepository() *MockRepaymentRepository {
	return &MockRepaymentRepository{repayments: make(map[string]*domain.Repayment)}
}

// Add seeds a repayment into the in-memory store.
func (m *MockRepaymentRepository) Add(repayment *domain.Repayment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repayments[repayment.ID] = repayment
}

func (m *MockRepaymentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, repayments []*domain.Repayment) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, repayments)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range repayments {
		m.repayments[r.ID] = r
	}
	return nil
}

func (m *MockRepaymentRepository) ExistsForLoan(ctx context.Context, tx usecase.Transaction, loanID string) (bool, error) {
	if m.ExistsForLoanFunc != nil {
		return m.ExistsForLoanFunc(ctx, tx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.repayments {
		if r.LoanID == loanID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Repayment, error) {
	if m.ListByLoanFunc != nil {
		return m.ListByLoanFunc(ctx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var repayments []*domain.Repayment
	for _, r := range m.repayments {
		if r.LoanID == loanID {
			repayments = append(repayments, r)
		}
	}
	sort.Slice(repayments, func(i, j int) bool { return repayments[i].Sequence < repayments[j].Sequence })
	return repayments, nil
}

func (m *MockRepaymentRepository) GetEarliestUnpaidForUpdate(ctx context.Context, tx usecase.Transaction, loanID string) (*domain.Repayment, error) {
	if m.GetEarliestUnpaidForUpdateFunc != nil {
		return m.GetEarliestUnpaidForUpdateFunc(ctx, tx, loanID)
	}
	repayments, err := m.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	for _, r := range repayments {
		if r.Status != domain.RepaymentStatusPaid {
			return r, nil
		}
	}
	return nil, domain.ErrRepaymentNotFound
}

func (m *MockRepaymentRepository) UpdatePayment(ctx context.Context, tx usecase.Transaction, repayment *domain.Repayment) error {
	if m.UpdatePaymentFunc != nil {
		return m.UpdatePaymentFunc(ctx, tx, repayment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repayments[repayment.ID] = repayment
	return nil
}

func (m *MockRepaymentRepository) LoanIDsWithPastDue(ctx context.Context, asOf time.Time) ([]string, error) {
	if m.LoanIDsWithPastDueFunc != nil {
		return m.LoanIDsWithPastDueFunc(ctx, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var ids []string
	for _, r := range m.repayments {
		if r.Status == domain.RepaymentStatusPaid || !r.DueDate.Before(asOf) || seen[r.LoanID] {
			continue
		}
		seen[r.LoanID] = true
		ids = append(ids, r.LoanID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockRepaymentRepository) EarliestUnpaidDueDate(ctx context.Context, loanID string) (*time.Time, error) {
	if m.EarliestUnpaidDueDateFunc != nil {
		return m.EarliestUnpaidDueDateFunc(ctx, loanID)
	}
	repayments, err := m.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	for _, r := range repayments {
		if r.Status != domain.RepaymentStatusPaid {
			due := r.DueDate
			return &due, nil
		}
	}
	return nil, nil
}

func (m *MockRepaymentRepository) Stats(ctx context.Context, memberID string) (int, int, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, memberID)
	}
	return 0, 0, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error
	ListByAccountFunc      func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListByMemberFunc       func(ctx context.Context, memberID string, limit, offset int) ([]*domain.Transaction, error)
	CountByMemberSinceFunc func(ctx context.Context, memberID string, since time.Time) (int, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// Entries returns everything written to the ledger so far.
func (m *MockTransactionRepository) Entries() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Transaction(nil), m.entries...)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Transaction
	for _, e := range m.entries {
		if e.AccountID != nil && *e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockTransactionRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, memberID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Transaction
	for _, e := range m.entries {
		if e.MemberID == memberID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockTransactionRepository) CountByMemberSince(ctx context.Context, memberID string, since time.Time) (int, error) {
	if m.CountByMemberSinceFunc != nil {
		return m.CountByMemberSinceFunc(ctx, memberID, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.entries {
		if e.MemberID == memberID && e.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	Began int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	m.Began++
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu   sync.Mutex
	next int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "01TESTID" + string(rune('A'+m.next%26)) + string(rune('A'+(m.next/26)%26))
}

// PassthroughRetrier runs the operation once without retrying.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
