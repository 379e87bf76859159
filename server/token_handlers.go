package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type setRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// GetTokenValue answers with a flat message on any failure
func (h *Handler) GetTokenValue(c *gin.Context) {
	var rate *entities.TokenRate
	err := h.run(c, func(s *application.Services) error {
		var err error
		rate, err = s.TokenRates.GetCurrentRate(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch token value")
		return
	}
	respondOK(c, http.StatusOK, "Token value retrieved", rate)
}

func (h *Handler) TokenValueHistory(c *gin.Context) {
	var rates []*entities.TokenRate
	err := h.run(c, func(s *application.Services) error {
		var err error
		rates, err = s.TokenRates.History(c.Request.Context(), queryInt(c, "limit", defaultListLimit))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch token value history")
		return
	}
	respondOK(c, http.StatusOK, "Token value history retrieved", rates)
}

func (h *Handler) SetTokenValue(c *gin.Context) {
	var req setRateRequest
	if !bindJSON(c, &req) {
		return
	}

	rate, err := h.runner.SetTokenRate(c.Request.Context(), currentUserID(c), req.Rate)
	if err != nil {
		respondError(c, err, "Failed to set token value")
		return
	}
	respondOK(c, http.StatusOK, "Token value updated", rate)
}
