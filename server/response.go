package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Response is the envelope of every API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// errorStatuses maps domain errors to HTTP statuses, first match wins
var errorStatuses = []struct {
	err    error
	status int
}{
	{entities.ErrNotFound, http.StatusNotFound},
	{entities.ErrInvalidCredentials, http.StatusUnauthorized},
	{entities.ErrTokenRevoked, http.StatusUnauthorized},
	{entities.ErrUnauthorized, http.StatusUnauthorized},
	{entities.ErrForbidden, http.StatusForbidden},
	{entities.ErrWageringDisabled, http.StatusForbidden},
	{entities.ErrEmailTaken, http.StatusConflict},
	{entities.ErrAlreadyJoined, http.StatusConflict},
	{entities.ErrTournamentFull, http.StatusConflict},
	{entities.ErrActiveSubscription, http.StatusConflict},
	{entities.ErrInvalidState, http.StatusConflict},
	{entities.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{entities.ErrInsufficientTokens, http.StatusUnprocessableEntity},
	{entities.ErrLimitExceeded, http.StatusUnprocessableEntity},
	{entities.ErrPaymentFailed, http.StatusBadGateway},
	{entities.ErrInvalidInput, http.StatusBadRequest},
	{entities.ErrInvalidAmount, http.StatusBadRequest},
	{entities.ErrSelfWager, http.StatusBadRequest},
	{entities.ErrUnknownProvider, http.StatusBadRequest},
}

// statusFor returns the HTTP status of a domain error, or 500 for anything unknown
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes a failure envelope. Unknown errors are logged and hidden
// behind fallback, domain errors are shown as a flat sentence.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("Request failed")
		respondMessage(c, status, fallback)
		return
	}
	if errors.Is(err, entities.ErrInvalidCredentials) {
		respondMessage(c, status, "Invalid email or password")
		return
	}
	respondMessage(c, status, sentence(err.Error()))
}

func sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return msg
	}
	runes := []rune(msg)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
