package models

import "time"

// PaymentStatus marks whether a patient payment has been settled.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// Payment records money received (or expected) from a patient for sessions.
type Payment struct {
	ID          string        `json:"id" db:"id"`
	PatientID   string        `json:"patientId" db:"patient_id"`
	Amount      float64       `json:"amount" db:"amount"`
	Date        time.Time     `json:"date" db:"paid_at"`
	Status      PaymentStatus `json:"status" db:"status"`
	Description string        `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// TransactionType distinguishes personal income from expenses.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// FinanceTransaction is a manual ledger entry outside of patient billing
// (rent, software, one-off income, ...).
type FinanceTransaction struct {
	ID          string          `json:"id" db:"id"`
	Type        TransactionType `json:"type" db:"tx_type"`
	Amount      float64         `json:"amount" db:"amount"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description,omitempty" db:"description"`
	Date        time.Time       `json:"date" db:"tx_date"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
