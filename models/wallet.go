package models

const (
	TransactionCredit = "CREDIT"
	TransactionDebit  = "DEBIT"
)

type Wallet struct {
	Balance int64 `json:"balance"`
}

type Transaction struct {
	ID              ID     `json:"id"`
	TransactionType string `json:"transaction_type"`
	Amount          int64  `json:"amount"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// WithdrawalRequest is the payload posted to the wallet withdrawal endpoints.
type WithdrawalRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	UPIID  string `json:"upi_id" validate:"required,upi"`
}
