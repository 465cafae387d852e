package infrastructure

import (
	"clanhall/application"
	"clanhall/database"
	"clanhall/domain/interfaces"
	"clanhall/repository"
)

// UnitOfWorkFactoryWrapper wraps the repository UnitOfWorkFactory to provide
// transactional publishers
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateForClanWithPublisher(clanID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements
// application.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) application.UnitOfWorkFactory {
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// CreateForClan creates a new UnitOfWork with a fresh transactional publisher
func (w *UnitOfWorkFactoryWrapper) CreateForClan(clanID int64) application.UnitOfWork {
	transactionalPublisher := NewNATSTransactionalPublisher(w.eventPublisher)
	return w.repoFactory.CreateForClanWithPublisher(clanID, transactionalPublisher)
}
