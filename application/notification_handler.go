package application

import (
	"context"
	"fmt"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"
)

// NotificationHandler turns committed domain events into in-app notifications
type NotificationHandler struct {
	runner *ServiceRunner
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(runner *ServiceRunner) *NotificationHandler {
	return &NotificationHandler{runner: runner}
}

type notice struct {
	userID    int64
	kind      entities.NotificationType
	title     string
	message   string
	relatedID *int64
}

func (h *NotificationHandler) deliver(ctx context.Context, notices ...notice) error {
	if len(notices) == 0 {
		return nil
	}
	return h.runner.Run(ctx, func(s *Services) error {
		for _, n := range notices {
			if _, err := s.Notifications.Notify(ctx, n.userID, n.kind, n.title, n.message, n.relatedID); err != nil {
				return fmt.Errorf("failed to notify user %d: %w", n.userID, err)
			}
		}
		return nil
	})
}

// HandleWagerCreated tells the opponent about a new challenge
func (h *NotificationHandler) HandleWagerCreated(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.WagerCreatedEvent](event)
	if err != nil {
		return err
	}
	return h.deliver(ctx, notice{
		userID:    e.OpponentID,
		kind:      entities.NotificationWagerReceived,
		title:     "New wager challenge",
		message:   fmt.Sprintf("You have been challenged to a %d token wager", e.Amount),
		relatedID: &e.WagerID,
	})
}

// HandleWagerStateChange tells the other side when a pending wager is answered or withdrawn
func (h *NotificationHandler) HandleWagerStateChange(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.WagerStateChangeEvent](event)
	if err != nil {
		return err
	}

	switch e.NewState {
	case entities.WagerStateAccepted:
		return h.deliver(ctx, notice{
			userID:    e.UserID,
			kind:      entities.NotificationWagerAccepted,
			title:     "Wager accepted",
			message:   fmt.Sprintf("Your wager #%d was accepted", e.WagerID),
			relatedID: &e.WagerID,
		})
	case entities.WagerStateDeclined:
		return h.deliver(ctx, notice{
			userID:    e.UserID,
			kind:      entities.NotificationWagerDeclined,
			title:     "Wager declined",
			message:   fmt.Sprintf("Your wager #%d was declined", e.WagerID),
			relatedID: &e.WagerID,
		})
	case entities.WagerStateCancelled:
		return h.deliver(ctx, notice{
			userID:    e.OpponentID,
			kind:      entities.NotificationWagerDeclined,
			title:     "Wager withdrawn",
			message:   fmt.Sprintf("Wager #%d was cancelled by its creator", e.WagerID),
			relatedID: &e.WagerID,
		})
	}
	return nil
}

// HandleWagerCompleted tells both participants how the wager ended
func (h *NotificationHandler) HandleWagerCompleted(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.WagerCompletedEvent](event)
	if err != nil {
		return err
	}
	return h.deliver(ctx,
		notice{
			userID:    e.WinnerID,
			kind:      entities.NotificationWagerCompleted,
			title:     "Wager won",
			message:   fmt.Sprintf("You won %d tokens on wager #%d", e.Amount, e.WagerID),
			relatedID: &e.WagerID,
		},
		notice{
			userID:    e.LoserID,
			kind:      entities.NotificationWagerCompleted,
			title:     "Wager lost",
			message:   fmt.Sprintf("You lost %d tokens on wager #%d", e.Amount, e.WagerID),
			relatedID: &e.WagerID,
		},
	)
}

// HandleTournamentJoined confirms a tournament entry
func (h *NotificationHandler) HandleTournamentJoined(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.TournamentJoinedEvent](event)
	if err != nil {
		return err
	}
	return h.deliver(ctx, notice{
		userID:    e.UserID,
		kind:      entities.NotificationTournamentEntry,
		title:     "Tournament entry confirmed",
		message:   fmt.Sprintf("You joined %s for %d tokens", e.Name, e.EntryFee),
		relatedID: &e.TournamentID,
	})
}

// HandleTournamentSettled tells the winner about the prize
func (h *NotificationHandler) HandleTournamentSettled(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.TournamentSettledEvent](event)
	if err != nil {
		return err
	}
	return h.deliver(ctx, notice{
		userID:    e.WinnerID,
		kind:      entities.NotificationTournamentPrize,
		title:     "Tournament won",
		message:   fmt.Sprintf("You won %s and a prize of %d tokens", e.Name, e.Prize),
		relatedID: &e.TournamentID,
	})
}

// HandlePaymentStatusChange reports settled deposits and withdrawals.
// Plain pending updates are skipped.
func (h *NotificationHandler) HandlePaymentStatusChange(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.PaymentStatusChangeEvent](event)
	if err != nil {
		return err
	}

	kind := entities.NotificationDeposit
	label := "Deposit"
	if e.TxType == entities.TransactionTypeWithdrawal {
		kind = entities.NotificationWithdrawal
		label = "Withdrawal"
	}
	amount := e.Amount.Abs().StringFixed(2)

	n := notice{userID: e.UserID, kind: kind, relatedID: &e.TransactionID}
	switch {
	case e.UnderReview:
		n.title = label + " under review"
		n.message = fmt.Sprintf("Your %s withdrawal is awaiting compliance review", amount)
	case e.Status == entities.TransactionStatusCompleted:
		n.title = label + " completed"
		n.message = fmt.Sprintf("%s of %s via %s completed", label, amount, e.Provider)
	case e.Status == entities.TransactionStatusFailed:
		n.title = label + " failed"
		n.message = fmt.Sprintf("%s of %s via %s failed", label, amount, e.Provider)
	default:
		return nil
	}
	return h.deliver(ctx, n)
}

// HandleReviewDecided tells the user how their review was decided
func (h *NotificationHandler) HandleReviewDecided(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.ComplianceReviewDecidedEvent](event)
	if err != nil {
		return err
	}
	return h.deliver(ctx, notice{
		userID:    e.UserID,
		kind:      entities.NotificationReview,
		title:     "Compliance review " + string(e.Status),
		message:   fmt.Sprintf("Review #%d was %s", e.ReviewID, e.Status),
		relatedID: &e.ReviewID,
	})
}

// HandleSubscriptionChange reports plan starts, renewals, cancellations and expiry
func (h *NotificationHandler) HandleSubscriptionChange(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.SubscriptionChangeEvent](event)
	if err != nil {
		return err
	}

	var title string
	switch {
	case e.Renewed:
		title = "Subscription renewed"
	case e.Status == entities.SubscriptionStatusActive:
		title = "Subscription started"
	case e.Status == entities.SubscriptionStatusCancelled:
		title = "Subscription cancelled"
	default:
		title = "Subscription expired"
	}
	return h.deliver(ctx, notice{
		userID:    e.UserID,
		kind:      entities.NotificationSubscription,
		title:     title,
		message:   fmt.Sprintf("Your %s plan is now %s", e.Plan, e.Status),
		relatedID: &e.SubscriptionID,
	})
}

// RegisterApplicationSubscriptions wires the in-process event handlers
func RegisterApplicationSubscriptions(subscriber EventSubscriber, runner *ServiceRunner) {
	notifications := NewNotificationHandler(runner)

	subscriber.RegisterLocalHandler(events.EventTypeWagerCreated, notifications.HandleWagerCreated)
	subscriber.RegisterLocalHandler(events.EventTypeWagerStateChange, notifications.HandleWagerStateChange)
	subscriber.RegisterLocalHandler(events.EventTypeWagerCompleted, notifications.HandleWagerCompleted)
	subscriber.RegisterLocalHandler(events.EventTypeTournamentJoined, notifications.HandleTournamentJoined)
	subscriber.RegisterLocalHandler(events.EventTypeTournamentSettled, notifications.HandleTournamentSettled)
	subscriber.RegisterLocalHandler(events.EventTypePaymentStatusChange, notifications.HandlePaymentStatusChange)
	subscriber.RegisterLocalHandler(events.EventTypeComplianceReviewDecided, notifications.HandleReviewDecided)
	subscriber.RegisterLocalHandler(events.EventTypeSubscriptionChange, notifications.HandleSubscriptionChange)
}
