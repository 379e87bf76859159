package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
)

type createWagerRequest struct {
	OpponentID int64  `json:"opponentId" binding:"required"`
	GameID     int64  `json:"gameId" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
	Terms      string `json:"terms" binding:"max=500"`
}

type completeWagerRequest struct {
	WinnerID int64 `json:"winnerId" binding:"required"`
}

func (h *Handler) CreateWager(c *gin.Context) {
	var req createWagerRequest
	if !bindJSON(c, &req) {
		return
	}

	var wager *entities.Wager
	err := h.run(c, func(s *application.Services) error {
		var err error
		wager, err = s.Wagers.CreateWager(c.Request.Context(), currentUserID(c), req.OpponentID, req.GameID, req.Amount, req.Terms)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to create wager")
		return
	}
	respondOK(c, http.StatusCreated, "Wager created", wager)
}

func (h *Handler) ListWagers(c *gin.Context) {
	var wagers []*entities.Wager
	err := h.run(c, func(s *application.Services) error {
		var err error
		wagers, err = s.Wagers.ListUserWagers(c.Request.Context(), currentUserID(c), queryBool(c, "active"), queryInt(c, "limit", defaultListLimit))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list wagers")
		return
	}
	respondOK(c, http.StatusOK, "Wagers retrieved", wagers)
}

func (h *Handler) GetWager(c *gin.Context) {
	h.wagerAction(c, "Wager retrieved", "Failed to fetch wager", func(s *application.Services, wagerID, userID int64) (*entities.Wager, error) {
		return s.Wagers.GetWager(c.Request.Context(), wagerID, userID)
	})
}

func (h *Handler) AcceptWager(c *gin.Context) {
	h.wagerAction(c, "Wager accepted", "Failed to accept wager", func(s *application.Services, wagerID, userID int64) (*entities.Wager, error) {
		return s.Wagers.AcceptWager(c.Request.Context(), wagerID, userID)
	})
}

func (h *Handler) DeclineWager(c *gin.Context) {
	h.wagerAction(c, "Wager declined", "Failed to decline wager", func(s *application.Services, wagerID, userID int64) (*entities.Wager, error) {
		return s.Wagers.DeclineWager(c.Request.Context(), wagerID, userID)
	})
}

func (h *Handler) CancelWager(c *gin.Context) {
	h.wagerAction(c, "Wager cancelled", "Failed to cancel wager", func(s *application.Services, wagerID, userID int64) (*entities.Wager, error) {
		return s.Wagers.CancelWager(c.Request.Context(), wagerID, userID)
	})
}

func (h *Handler) CompleteWager(c *gin.Context) {
	var req completeWagerRequest
	if !bindJSON(c, &req) {
		return
	}
	h.wagerAction(c, "Wager completed", "Failed to complete wager", func(s *application.Services, wagerID, userID int64) (*entities.Wager, error) {
		return s.Wagers.CompleteWager(c.Request.Context(), wagerID, userID, req.WinnerID)
	})
}

// wagerAction runs a single-wager operation on the :id path parameter for the caller
func (h *Handler) wagerAction(c *gin.Context, okMessage, failMessage string, action func(s *application.Services, wagerID, userID int64) (*entities.Wager, error)) {
	wagerID, ok := pathID(c)
	if !ok {
		return
	}

	var wager *entities.Wager
	err := h.run(c, func(s *application.Services) error {
		var err error
		wager, err = action(s, wagerID, currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, failMessage)
		return
	}
	respondOK(c, http.StatusOK, okMessage, wager)
}
