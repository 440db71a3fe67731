package model

import "time"

// Deposit is money received into a bank account.
type Deposit struct {
	Date      time.Time
	ID        string
	AccountID string
	Payee     string
	Memo      string
	Amount    float64
}
