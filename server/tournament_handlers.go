package server

import (
	"net/http"
	"time"

	"wagerhub/application"
	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type createTournamentRequest struct {
	Name            string    `json:"name" binding:"required,max=200"`
	GameID          int64     `json:"gameId" binding:"required"`
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required"`
	MaxParticipants int       `json:"maxParticipants" binding:"required"`
	EntryFee        int64     `json:"entryFee"`
}

type settleTournamentRequest struct {
	WinnerID int64 `json:"winnerId" binding:"required"`
}

func (h *Handler) ListTournaments(c *gin.Context) {
	var status *entities.TournamentStatus
	if v := c.Query("status"); v != "" {
		s := entities.TournamentStatus(v)
		status = &s
	}

	var tournaments []*entities.Tournament
	err := h.run(c, func(s *application.Services) error {
		var err error
		tournaments, err = s.Tournaments.ListTournaments(c.Request.Context(), status)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list tournaments")
		return
	}
	respondOK(c, http.StatusOK, "Tournaments retrieved", tournaments)
}

func (h *Handler) GetTournament(c *gin.Context) {
	h.tournamentAction(c, http.StatusOK, "Tournament retrieved", "Failed to fetch tournament", func(s *application.Services, id int64) (*entities.Tournament, error) {
		return s.Tournaments.GetTournament(c.Request.Context(), id)
	})
}

func (h *Handler) GetTournamentParticipants(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var participants []*entities.TournamentParticipant
	err := h.run(c, func(s *application.Services) error {
		var err error
		participants, err = s.Tournaments.GetParticipants(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to fetch participants")
		return
	}
	respondOK(c, http.StatusOK, "Participants retrieved", participants)
}

func (h *Handler) CreateTournament(c *gin.Context) {
	var req createTournamentRequest
	if !bindJSON(c, &req) {
		return
	}

	var tournament *entities.Tournament
	err := h.run(c, func(s *application.Services) error {
		var err error
		tournament, err = s.Tournaments.CreateTournament(c.Request.Context(), currentUserID(c), interfaces.CreateTournamentParams{
			Name:            req.Name,
			GameID:          req.GameID,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			MaxParticipants: req.MaxParticipants,
			EntryFee:        req.EntryFee,
		})
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to create tournament")
		return
	}
	respondOK(c, http.StatusCreated, "Tournament created", tournament)
}

func (h *Handler) JoinTournament(c *gin.Context) {
	h.tournamentAction(c, http.StatusOK, "Joined tournament", "Failed to join tournament", func(s *application.Services, id int64) (*entities.Tournament, error) {
		return s.Tournaments.JoinTournament(c.Request.Context(), id, currentUserID(c))
	})
}

func (h *Handler) SettleTournament(c *gin.Context) {
	var req settleTournamentRequest
	if !bindJSON(c, &req) {
		return
	}
	h.tournamentAction(c, http.StatusOK, "Tournament settled", "Failed to settle tournament", func(s *application.Services, id int64) (*entities.Tournament, error) {
		return s.Tournaments.SettleTournament(c.Request.Context(), id, req.WinnerID)
	})
}

func (h *Handler) CancelTournament(c *gin.Context) {
	h.tournamentAction(c, http.StatusOK, "Tournament cancelled", "Failed to cancel tournament", func(s *application.Services, id int64) (*entities.Tournament, error) {
		return s.Tournaments.CancelTournament(c.Request.Context(), id)
	})
}

func (h *Handler) tournamentAction(c *gin.Context, status int, okMessage, failMessage string, action func(s *application.Services, id int64) (*entities.Tournament, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var tournament *entities.Tournament
	err := h.run(c, func(s *application.Services) error {
		var err error
		tournament, err = action(s, id)
		return err
	})
	if err != nil {
		respondError(c, err, failMessage)
		return
	}
	respondOK(c, status, okMessage, tournament)
}
