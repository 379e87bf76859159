package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type complianceSettingsRequest struct {
	MaxDepositAmount          decimal.Decimal `json:"maxDepositAmount"`
	DailyDepositLimit         decimal.Decimal `json:"dailyDepositLimit"`
	MaxWithdrawalAmount       decimal.Decimal `json:"maxWithdrawalAmount"`
	WithdrawalReviewThreshold decimal.Decimal `json:"withdrawalReviewThreshold"`
	MaxWagerAmount            int64           `json:"maxWagerAmount"`
	WageringEnabled           bool            `json:"wageringEnabled"`
}

type decideReviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes" binding:"max=1000"`
}

func (h *Handler) GetComplianceSettings(c *gin.Context) {
	var settings *entities.ComplianceSettings
	err := h.run(c, func(s *application.Services) error {
		var err error
		settings, err = s.Compliance.GetSettings(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch compliance settings")
		return
	}
	respondOK(c, http.StatusOK, "Compliance settings retrieved", settings)
}

func (h *Handler) UpdateComplianceSettings(c *gin.Context) {
	var req complianceSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	var settings *entities.ComplianceSettings
	err := h.run(c, func(s *application.Services) error {
		var err error
		settings, err = s.Compliance.UpdateSettings(c.Request.Context(), currentUserID(c), &entities.ComplianceSettings{
			MaxDepositAmount:          req.MaxDepositAmount,
			DailyDepositLimit:         req.DailyDepositLimit,
			MaxWithdrawalAmount:       req.MaxWithdrawalAmount,
			WithdrawalReviewThreshold: req.WithdrawalReviewThreshold,
			MaxWagerAmount:            req.MaxWagerAmount,
			WageringEnabled:           req.WageringEnabled,
		})
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to update compliance settings")
		return
	}
	respondOK(c, http.StatusOK, "Compliance settings updated", settings)
}

func (h *Handler) ListReviews(c *gin.Context) {
	var status *entities.ReviewStatus
	if v := c.Query("status"); v != "" {
		s := entities.ReviewStatus(v)
		status = &s
	}

	var reviews []*entities.ComplianceReview
	err := h.run(c, func(s *application.Services) error {
		var err error
		reviews, err = s.Compliance.ListReviews(c.Request.Context(), status, queryInt(c, "limit", defaultListLimit))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list compliance reviews")
		return
	}
	respondOK(c, http.StatusOK, "Compliance reviews retrieved", reviews)
}

func (h *Handler) GetReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var review *entities.ComplianceReview
	err := h.run(c, func(s *application.Services) error {
		var err error
		review, err = s.Compliance.GetReview(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch compliance review")
		return
	}
	respondOK(c, http.StatusOK, "Compliance review retrieved", review)
}

// DecideReview also pays out or refunds the withdrawal under review
func (h *Handler) DecideReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req decideReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	decision, err := h.payments.DecideReview(c.Request.Context(), id, currentUserID(c), *req.Approve, req.Notes)
	if err != nil {
		respondError(c, err, "Failed to decide compliance review")
		return
	}
	respondOK(c, http.StatusOK, "Compliance review decided", decision)
}
