package infrastructure

import (
	"wagerhub/application"
	"wagerhub/database"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"
	"wagerhub/repository"
)

// UnitOfWorkFactory implements the application.UnitOfWorkFactory interface
// It creates UnitOfWork instances that handle both database transactions and event publishing
type UnitOfWorkFactory struct {
	repoFactory    *repository.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler EventHandler) {
	if natsPublisher, ok := f.eventPublisher.(*NATSEventPublisher); ok {
		natsPublisher.RegisterLocalHandler(eventType, handler)
	}
}

// Create creates a new UnitOfWork whose events are published after commit
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}
