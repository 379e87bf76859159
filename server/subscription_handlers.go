package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
)

type subscribeRequest struct {
	Plan entities.SubscriptionPlan `json:"plan" binding:"required"`
}

func (h *Handler) GetSubscription(c *gin.Context) {
	var sub *entities.Subscription
	err := h.run(c, func(s *application.Services) error {
		var err error
		sub, err = s.Subscriptions.GetCurrent(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch subscription")
		return
	}
	respondOK(c, http.StatusOK, "Subscription retrieved", sub)
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	var sub *entities.Subscription
	err := h.run(c, func(s *application.Services) error {
		var err error
		sub, err = s.Subscriptions.Subscribe(c.Request.Context(), currentUserID(c), req.Plan)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to subscribe")
		return
	}
	respondOK(c, http.StatusCreated, "Subscribed", sub)
}

func (h *Handler) CancelSubscription(c *gin.Context) {
	var sub *entities.Subscription
	err := h.run(c, func(s *application.Services) error {
		var err error
		sub, err = s.Subscriptions.Cancel(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to cancel subscription")
		return
	}
	respondOK(c, http.StatusOK, "Subscription cancelled", sub)
}
