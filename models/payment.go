package models

// PaymentIntent is what the backend returns for a new card payment.
type PaymentIntent struct {
	ID           string `json:"id,omitempty"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
}

// PaymentConfirmation is the outcome of confirming an intent with the gateway.
type PaymentConfirmation struct {
	IntentID string `json:"intentId"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
