package infrastructure

import (
	"fmt"

	"wagerhub/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeUserRegistered:
		return "users.registered"
	case events.EventTypeBalanceChange:
		return "wallets.balance_changed"
	case events.EventTypeWagerCreated:
		return "wagers.created"
	case events.EventTypeWagerStateChange:
		return "wagers.state_changed"
	case events.EventTypeWagerCompleted:
		return "wagers.completed"
	case events.EventTypeTournamentJoined:
		return "tournaments.joined"
	case events.EventTypeTournamentStatusChange:
		return "tournaments.status_changed"
	case events.EventTypeTournamentSettled:
		return "tournaments.settled"
	case events.EventTypePaymentStatusChange:
		return "payments.status_changed"
	case events.EventTypeComplianceReviewDecided:
		return "compliance.review_decided"
	case events.EventTypeTokenRateChanged:
		return "tokens.rate_changed"
	case events.EventTypeSubscriptionChange:
		return "subscriptions.changed"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"users.registered",
		"wallets.balance_changed",
		"wagers.created",
		"wagers.state_changed",
		"wagers.completed",
		"tournaments.joined",
		"tournaments.status_changed",
		"tournaments.settled",
		"payments.status_changed",
		"compliance.review_decided",
		"tokens.rate_changed",
		"subscriptions.changed",
	}
}
