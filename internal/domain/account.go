package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a record owned by the banking backend; the portal only reads it.
// AccountNo is the bare account number, without any "account:" style prefix.
type Account struct {
	AccountNo   string          `json:"account_no"`
	Balance     decimal.Decimal `json:"account_balance"`
	AccountType string          `json:"account_type,omitempty"`
	Currency    string          `json:"currency,omitempty"`
}
