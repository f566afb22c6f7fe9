package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdrawal     TransactionType = "withdrawal"
	TransactionTypeInterestCredit TransactionType = "interest_credit"
	TransactionTypeDisbursement   TransactionType = "disbursement"
	TransactionTypeRepayment      TransactionType = "repayment"
)

// Transaction is an append-only ledger entry recording every
// balance-affecting event with before/after balances for audit.
// Rows are never updated or deleted.
type Transaction struct {
	ID            string
	MemberID      string
	AccountID     *string
	LoanID        *string
	Type          TransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reference     string
	CreatedAt     time.Time
}
