package utils

import (
	"github.com/shopspring/decimal"

	"bank-portal/internal/domain"
)

// AccountDelimiter separates the namespace tag from the account number,
// as in "account:12345".
const AccountDelimiter = ':'

// CalculateBalance projects the balance of the account named by accountID
// after amount is taken out. accountID must carry a tag prefix; the bare
// number after AccountDelimiter is matched against accounts in order and
// the first match wins.
//
// The second result is false when nothing was computed: an empty id, a
// zero amount, or no matching account.
func CalculateBalance(accountID string, amount decimal.Decimal, accounts []domain.Account) (decimal.Decimal, bool) {
	if accountID == "" || amount.IsZero() {
		return decimal.Zero, false
	}

	accountNo := SubsequentSubstring(accountID, AccountDelimiter)
	if accountNo == "" {
		return decimal.Zero, false
	}

	for _, account := range accounts {
		if account.AccountNo == accountNo {
			return account.Balance.Sub(amount), true
		}
	}

	return decimal.Zero, false
}
