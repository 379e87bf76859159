package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
)

type createGameRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

type gameStatusRequest struct {
	Status entities.GameStatus `json:"status" binding:"required"`
}

func (h *Handler) ListGames(c *gin.Context) {
	var status *entities.GameStatus
	if v := c.Query("status"); v != "" {
		s := entities.GameStatus(v)
		status = &s
	}

	var games []*entities.Game
	err := h.run(c, func(s *application.Services) error {
		var err error
		games, err = s.Games.ListGames(c.Request.Context(), status)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list games")
		return
	}
	respondOK(c, http.StatusOK, "Games retrieved", games)
}

func (h *Handler) GetGame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var game *entities.Game
	err := h.run(c, func(s *application.Services) error {
		var err error
		game, err = s.Games.GetGame(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch game")
		return
	}
	respondOK(c, http.StatusOK, "Game retrieved", game)
}

func (h *Handler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req) {
		return
	}

	var game *entities.Game
	err := h.run(c, func(s *application.Services) error {
		var err error
		game, err = s.Games.CreateGame(c.Request.Context(), req.Name, req.Description)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to create game")
		return
	}
	respondOK(c, http.StatusCreated, "Game created", game)
}

func (h *Handler) UpdateGameStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req gameStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	var game *entities.Game
	err := h.run(c, func(s *application.Services) error {
		var err error
		game, err = s.Games.UpdateGameStatus(c.Request.Context(), id, req.Status)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to update game")
		return
	}
	respondOK(c, http.StatusOK, "Game updated", game)
}
