package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
)

func (h *Handler) UserDashboard(c *gin.Context) {
	var dashboard *entities.UserDashboard
	err := h.run(c, func(s *application.Services) error {
		var err error
		dashboard, err = s.Dashboard.GetUserDashboard(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch dashboard")
		return
	}
	respondOK(c, http.StatusOK, "Dashboard retrieved", dashboard)
}

func (h *Handler) PlatformMetrics(c *gin.Context) {
	var metrics *entities.DashboardMetrics
	err := h.run(c, func(s *application.Services) error {
		var err error
		metrics, err = s.Dashboard.GetPlatformMetrics(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch dashboard metrics")
		return
	}
	respondOK(c, http.StatusOK, "Dashboard metrics retrieved", metrics)
}
