package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bank-portal/internal/domain"
)

func TestCalculateBalance(t *testing.T) {
	accounts := []domain.Account{
		{AccountNo: "12345", Balance: decimal.NewFromInt(100)},
		{AccountNo: "67890", Balance: decimal.RequireFromString("250.75")},
		{AccountNo: "12345", Balance: decimal.NewFromInt(999)},
	}

	tests := []struct {
		name      string
		accountID string
		amount    decimal.Decimal
		want      decimal.Decimal
		wantOk    bool
	}{
		{"matching account", "account:12345", decimal.NewFromInt(40), decimal.NewFromInt(60), true},
		{"decimal amounts", "account:67890", decimal.RequireFromString("0.75"), decimal.NewFromInt(250), true},
		{"overdraw goes negative", "account:12345", decimal.NewFromInt(150), decimal.NewFromInt(-50), true},
		{"no match", "account:00000", decimal.NewFromInt(40), decimal.Zero, false},
		{"bare id has no delimiter", "12345", decimal.NewFromInt(40), decimal.Zero, false},
		{"trailing delimiter", "account:", decimal.NewFromInt(40), decimal.Zero, false},
		{"empty id", "", decimal.NewFromInt(40), decimal.Zero, false},
		{"zero amount", "account:12345", decimal.Zero, decimal.Zero, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalculateBalance(tt.accountID, tt.amount, accounts)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCalculateBalanceUsesFirstMatch(t *testing.T) {
	accounts := []domain.Account{
		{AccountNo: "12345", Balance: decimal.NewFromInt(100)},
		{AccountNo: "12345", Balance: decimal.NewFromInt(999)},
	}

	got, ok := CalculateBalance("account:12345", decimal.NewFromInt(40), accounts)

	assert.True(t, ok)
	assert.Equal(t, "60", got.String())
}
