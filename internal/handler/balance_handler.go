package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"bank-portal/internal/domain"
	"bank-portal/internal/errors"
	"bank-portal/internal/utils"
)

type BalanceHandler struct{}

func NewBalanceHandler() *BalanceHandler {
	return &BalanceHandler{}
}

type BalancePreviewRequest struct {
	Account  string           `json:"account"`
	Amount   string           `json:"amount"`
	Accounts []domain.Account `json:"accounts"`
}

type BalancePreviewResponse struct {
	Computed         bool   `json:"computed"`
	ProjectedBalance string `json:"projected_balance,omitempty"`
}

// Preview projects an account's balance after a debit, the way transaction
// forms show it before submitting.
func (h *BalanceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req BalancePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid amount format").WithDetails(err.Error()))
			return
		}
		amount = parsed
	}

	balance, ok := utils.CalculateBalance(req.Account, amount, req.Accounts)
	if !ok {
		writeJSON(w, http.StatusOK, BalancePreviewResponse{Computed: false})
		return
	}

	writeJSON(w, http.StatusOK, BalancePreviewResponse{
		Computed:         true,
		ProjectedBalance: balance.String(),
	})
}
