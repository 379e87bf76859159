package server

import (
	"net/http"
	"strconv"

	"wagerhub/application"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

// Handler serves every API route
type Handler struct {
	runner   *application.ServiceRunner
	payments *application.PaymentWorkflow
}

// NewHandler creates a new handler
func NewHandler(runner *application.ServiceRunner, payments *application.PaymentWorkflow) *Handler {
	return &Handler{runner: runner, payments: payments}
}

// run executes fn inside a unit of work bound to the request context
func (h *Handler) run(c *gin.Context, fn func(*application.Services) error) error {
	return h.runner.Run(c.Request.Context(), fn)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Message: "wagerhub is running"})
}

// bindJSON decodes the body, answering 400 itself on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return false
	}
	return true
}

// pathID parses the :id parameter, answering 400 itself on failure
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}
