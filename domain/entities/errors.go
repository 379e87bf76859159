package entities

import "errors"

// Domain errors. Services wrap these with context; the HTTP layer maps them to status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientTokens  = errors.New("insufficient tokens")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrAlreadyJoined       = errors.New("already joined this tournament")
	ErrLimitExceeded       = errors.New("compliance limit exceeded")
	ErrWageringDisabled    = errors.New("wagering is currently disabled")
	ErrUnknownProvider     = errors.New("unknown payment processor")
	ErrSelfWager           = errors.New("cannot create a wager against yourself")
	ErrActiveSubscription  = errors.New("user already has a subscription")
	ErrPaymentFailed       = errors.New("payment processor rejected the request")
)
