package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type currencyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type tokensRequest struct {
	Tokens int64 `json:"tokens" binding:"required"`
}

type providerRequest struct {
	Processor string          `json:"processor" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

func (h *Handler) GetWallet(c *gin.Context) {
	var view *interfaces.WalletView
	err := h.run(c, func(s *application.Services) error {
		var err error
		view, err = s.Wallet.GetWallet(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch wallet")
		return
	}
	respondOK(c, http.StatusOK, "Wallet retrieved", view)
}

func (h *Handler) ConvertToTokens(c *gin.Context) {
	var req currencyRequest
	if !bindJSON(c, &req) {
		return
	}

	var result *interfaces.ConversionResult
	err := h.run(c, func(s *application.Services) error {
		var err error
		result, err = s.Wallet.ConvertToTokens(c.Request.Context(), currentUserID(c), req.Amount)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to convert currency to tokens")
		return
	}
	respondOK(c, http.StatusOK, "Currency converted to tokens", result)
}

func (h *Handler) ConvertToCurrency(c *gin.Context) {
	var req tokensRequest
	if !bindJSON(c, &req) {
		return
	}

	var result *interfaces.ConversionResult
	err := h.run(c, func(s *application.Services) error {
		var err error
		result, err = s.Wallet.ConvertToCurrency(c.Request.Context(), currentUserID(c), req.Tokens)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to convert tokens to currency")
		return
	}
	respondOK(c, http.StatusOK, "Tokens converted to currency", result)
}

func (h *Handler) Deposit(c *gin.Context) {
	var req providerRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.payments.Deposit(c.Request.Context(), currentUserID(c), req.Processor, req.Amount)
	if err != nil {
		respondError(c, err, "Failed to process deposit")
		return
	}
	respondOK(c, http.StatusCreated, "Deposit completed", tx)
}

func (h *Handler) Withdraw(c *gin.Context) {
	var req providerRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.payments.Withdraw(c.Request.Context(), currentUserID(c), req.Processor, req.Amount)
	if err != nil {
		respondError(c, err, "Failed to process withdrawal")
		return
	}
	if result.Review != nil {
		respondOK(c, http.StatusAccepted, "Withdrawal is awaiting compliance review", result)
		return
	}
	respondOK(c, http.StatusCreated, "Withdrawal completed", result)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	var txs []*entities.Transaction
	err := h.run(c, func(s *application.Services) error {
		var err error
		txs, err = s.Wallet.ListTransactions(c.Request.Context(), currentUserID(c), queryInt(c, "limit", defaultListLimit))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	respondOK(c, http.StatusOK, "Transactions retrieved", txs)
}

func (h *Handler) ListProviders(c *gin.Context) {
	respondOK(c, http.StatusOK, "Payment processors retrieved", h.payments.Providers())
}
