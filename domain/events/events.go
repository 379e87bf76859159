package events

import (
	"wagerhub/domain/entities"

	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserRegistered          EventType = "user_registered"
	EventTypeBalanceChange           EventType = "balance_change"
	EventTypeWagerCreated            EventType = "wager_created"
	EventTypeWagerStateChange        EventType = "wager_state_change"
	EventTypeWagerCompleted          EventType = "wager_completed"
	EventTypeTournamentJoined        EventType = "tournament_joined"
	EventTypeTournamentStatusChange  EventType = "tournament_status_change"
	EventTypeTournamentSettled       EventType = "tournament_settled"
	EventTypePaymentStatusChange     EventType = "payment_status_change"
	EventTypeComplianceReviewDecided EventType = "compliance_review_decided"
	EventTypeTokenRateChanged        EventType = "token_rate_changed"
	EventTypeSubscriptionChange      EventType = "subscription_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserRegisteredEvent is emitted once a user and their wallet exist
type UserRegisteredEvent struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// BalanceChangeEvent represents a wallet change backed by a transaction
type BalanceChangeEvent struct {
	UserID          int64                    `json:"userId"`
	TransactionID   int64                    `json:"transactionId"`
	TransactionType entities.TransactionType `json:"transactionType"`
	CurrencyChange  decimal.Decimal          `json:"currencyChange"`
	TokenChange     int64                    `json:"tokenChange"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// WagerCreatedEvent is emitted when a wager is offered to an opponent
type WagerCreatedEvent struct {
	WagerID    int64 `json:"wagerId"`
	UserID     int64 `json:"userId"`
	OpponentID int64 `json:"opponentId"`
	GameID     int64 `json:"gameId"`
	Amount     int64 `json:"amount"`
}

func (e WagerCreatedEvent) Type() EventType {
	return EventTypeWagerCreated
}

// WagerStateChangeEvent covers accept, decline and cancel transitions
type WagerStateChangeEvent struct {
	WagerID    int64               `json:"wagerId"`
	UserID     int64               `json:"userId"`
	OpponentID int64               `json:"opponentId"`
	ActorID    int64               `json:"actorId"`
	OldState   entities.WagerState `json:"oldState"`
	NewState   entities.WagerState `json:"newState"`
}

func (e WagerStateChangeEvent) Type() EventType {
	return EventTypeWagerStateChange
}

// WagerCompletedEvent represents a settled wager
type WagerCompletedEvent struct {
	WagerID  int64 `json:"wagerId"`
	WinnerID int64 `json:"winnerId"`
	LoserID  int64 `json:"loserId"`
	Amount   int64 `json:"amount"`
}

func (e WagerCompletedEvent) Type() EventType {
	return EventTypeWagerCompleted
}

// TournamentJoinedEvent is emitted after an entry fee is paid
type TournamentJoinedEvent struct {
	TournamentID int64  `json:"tournamentId"`
	Name         string `json:"name"`
	UserID       int64  `json:"userId"`
	EntryFee     int64  `json:"entryFee"`
}

func (e TournamentJoinedEvent) Type() EventType {
	return EventTypeTournamentJoined
}

// TournamentStatusChangeEvent represents a tournament lifecycle transition
type TournamentStatusChangeEvent struct {
	TournamentID int64                     `json:"tournamentId"`
	OldStatus    entities.TournamentStatus `json:"oldStatus"`
	NewStatus    entities.TournamentStatus `json:"newStatus"`
}

func (e TournamentStatusChangeEvent) Type() EventType {
	return EventTypeTournamentStatusChange
}

// TournamentSettledEvent is emitted when the prize pool is paid to the winner
type TournamentSettledEvent struct {
	TournamentID int64  `json:"tournamentId"`
	Name         string `json:"name"`
	WinnerID     int64  `json:"winnerId"`
	Prize        int64  `json:"prize"`
}

func (e TournamentSettledEvent) Type() EventType {
	return EventTypeTournamentSettled
}

// PaymentStatusChangeEvent tracks deposits and withdrawals through their provider
type PaymentStatusChangeEvent struct {
	TransactionID int64                      `json:"transactionId"`
	UserID        int64                      `json:"userId"`
	TxType        entities.TransactionType   `json:"txType"`
	Amount        decimal.Decimal            `json:"amount"`
	Provider      string                     `json:"provider"`
	Status        entities.TransactionStatus `json:"status"`
	UnderReview   bool                       `json:"underReview"`
}

func (e PaymentStatusChangeEvent) Type() EventType {
	return EventTypePaymentStatusChange
}

// ComplianceReviewDecidedEvent is emitted when staff approve or reject a review
type ComplianceReviewDecidedEvent struct {
	ReviewID   int64                 `json:"reviewId"`
	UserID     int64                 `json:"userId"`
	ReviewerID int64                 `json:"reviewerId"`
	Status     entities.ReviewStatus `json:"status"`
}

func (e ComplianceReviewDecidedEvent) Type() EventType {
	return EventTypeComplianceReviewDecided
}

// TokenRateChangedEvent is emitted when an admin sets a new token value
type TokenRateChangedEvent struct {
	OldRate decimal.Decimal `json:"oldRate"`
	NewRate decimal.Decimal `json:"newRate"`
	SetBy   int64           `json:"setBy"`
}

func (e TokenRateChangedEvent) Type() EventType {
	return EventTypeTokenRateChanged
}

// SubscriptionChangeEvent covers subscribe, renew, cancel and expiry
type SubscriptionChangeEvent struct {
	SubscriptionID int64                       `json:"subscriptionId"`
	UserID         int64                       `json:"userId"`
	Plan           entities.SubscriptionPlan   `json:"plan"`
	Status         entities.SubscriptionStatus `json:"status"`
	Renewed        bool                        `json:"renewed"`
}

func (e SubscriptionChangeEvent) Type() EventType {
	return EventTypeSubscriptionChange
}
