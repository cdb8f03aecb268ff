package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/events"
	"raffler/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	listingRepo      service.ListingRepository
	purchaseRepo     service.TicketPurchaseRepository
	rangeRepo        service.TicketRangeRepository
	outcomeRepo      service.RaffleOutcomeRepository
	auditRepo        service.AuditEventRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.listingRepo = newListingRepositoryWithTx(tx)
	u.purchaseRepo = newTicketPurchaseRepositoryWithTx(tx)
	u.rangeRepo = newTicketRangeRepositoryWithTx(tx)
	u.outcomeRepo = newRaffleOutcomeRepositoryWithTx(tx)
	u.auditRepo = newAuditEventRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// ListingRepository returns the listing repository for this unit of work
func (u *unitOfWork) ListingRepository() service.ListingRepository {
	if u.listingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.listingRepo
}

// TicketPurchaseRepository returns the ticket purchase repository for this unit of work
func (u *unitOfWork) TicketPurchaseRepository() service.TicketPurchaseRepository {
	if u.purchaseRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.purchaseRepo
}

// TicketRangeRepository returns the ticket range repository for this unit of work
func (u *unitOfWork) TicketRangeRepository() service.TicketRangeRepository {
	if u.rangeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rangeRepo
}

// RaffleOutcomeRepository returns the raffle outcome repository for this unit of work
func (u *unitOfWork) RaffleOutcomeRepository() service.RaffleOutcomeRepository {
	if u.outcomeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.outcomeRepo
}

// AuditEventRepository returns the audit event repository for this unit of work
func (u *unitOfWork) AuditEventRepository() service.AuditEventRepository {
	if u.auditRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.auditRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
