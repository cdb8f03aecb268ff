package service

import (
	"context"
	"fmt"
	"time"

	"raffler/config"
	"raffler/events"
	"raffler/models"

	log "github.com/sirupsen/logrus"
)

type purchaseService struct {
	uowFactory  UnitOfWorkFactory
	payments    PaymentGateway
	eligibility EligibilityGate
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(uowFactory UnitOfWorkFactory, payments PaymentGateway, eligibility EligibilityGate) PurchaseService {
	return &purchaseService{
		uowFactory:  uowFactory,
		payments:    payments,
		eligibility: eligibility,
	}
}

// PurchaseTickets runs the all-or-nothing purchase transaction. Every
// decision (status, end date, price, counter) is taken from the single locked
// read of the listing row, never from state read before the lock. Any error
// rolls back the whole transaction: no partial range, no counter mutation, no
// audit record.
func (s *purchaseService) PurchaseTickets(ctx context.Context, actor models.Actor, listingID string, qty int, idempotencyKey string) (*models.PurchaseResult, error) {
	if qty <= 0 {
		return nil, NewInvalidState("quantity must be positive")
	}

	// Bound the transaction, including the row lock and both gateway calls.
	// On timeout the transaction rolls back and the lock releases; a client
	// retrying with the same idempotency key cannot double-purchase.
	cfg := config.Get()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.PurchaseTimeoutSeconds)*time.Second)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Idempotency fast-path: a replayed key returns the stored outcome with
	// no side effects, before any lock is taken.
	if idempotencyKey != "" {
		replay, err := s.replayPurchase(ctx, uow, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	listing, err := uow.ListingRepository().GetByIDForUpdate(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	if listing == nil {
		return nil, NewNotFound("listing %s not found", listingID)
	}

	// Re-check the key now that the row lock has serialized us behind any
	// in-flight first attempt. A retry racing that attempt misses the
	// fast-path read, blocks on the lock, and must see the committed
	// purchase here instead of capturing payment a second time. This check
	// runs before the status guards: the first attempt may have closed the
	// listing by crossing the threshold, and the retry still replays.
	if idempotencyKey != "" {
		replay, err := s.replayPurchase(ctx, uow, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	if listing.Status != models.ListingStatusActive {
		return nil, NewInvalidState("listing is not active")
	}
	if listing.HasEnded(time.Now()) {
		return nil, s.closeExpiredListing(ctx, uow, listing)
	}
	if remaining := listing.ThresholdCount - listing.TicketsSold; qty > remaining {
		return nil, NewInvalidState("not enough tickets remaining: %d left", remaining)
	}

	allowed, err := s.eligibility.CanParticipate(ctx, actor.AliasID)
	if err != nil {
		return nil, fmt.Errorf("failed to check eligibility: %w", err)
	}
	if !allowed {
		return nil, NewForbidden("participation not allowed")
	}

	amount := listing.TicketPrice * int64(qty)
	paymentRef, err := s.payments.AuthorizeAndCapture(ctx, listingID, actor.AliasID, qty, amount)
	if err != nil {
		return nil, NewPaymentFailed("payment capture failed: %v", err)
	}
	paymentStatus, err := s.payments.Confirm(ctx, paymentRef)
	if err != nil {
		return nil, NewPaymentFailed("payment confirmation failed: %v", err)
	}
	if paymentStatus != models.PaymentStatusConfirmed {
		return nil, NewPaymentFailed("payment was not confirmed")
	}

	// Allocate the next contiguous block from the locked counter value
	startTicket := listing.TicketsSold + 1
	endTicket := listing.TicketsSold + qty

	purchase := &models.TicketPurchase{
		ListingID:    listingID,
		BuyerAliasID: actor.AliasID,
		Qty:          qty,
		PaymentRef:   paymentRef,
		Status:       models.PurchaseStatusConfirmed,
	}
	if idempotencyKey != "" {
		purchase.IdempotencyKey = &idempotencyKey
	}
	if err := uow.TicketPurchaseRepository().Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create ticket purchase: %w", err)
	}

	ticketRange := &models.TicketRange{
		ListingID:   listingID,
		PurchaseID:  purchase.ID,
		StartTicket: startTicket,
		EndTicket:   endTicket,
	}
	if err := uow.TicketRangeRepository().Create(ctx, ticketRange); err != nil {
		return nil, fmt.Errorf("failed to create ticket range: %w", err)
	}

	updated, err := uow.ListingRepository().AddTicketsSold(ctx, listingID, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to advance sold counter: %w", err)
	}

	auditEvent := &models.AuditEvent{
		ActorAliasID: &actor.AliasID,
		Action:       models.AuditActionTicketsPurchased,
		TargetType:   models.AuditTargetListing,
		TargetID:     listingID,
		Metadata: map[string]any{
			"qty":          qty,
			"purchase_id":  purchase.ID,
			"start_ticket": startTicket,
			"end_ticket":   endTicket,
			"amount":       amount,
		},
	}
	if err := uow.AuditEventRepository().Record(ctx, auditEvent); err != nil {
		return nil, fmt.Errorf("failed to record audit event: %w", err)
	}

	uow.EventBus().Publish(events.TicketsPurchasedEvent{
		ListingID:    listingID,
		PurchaseID:   purchase.ID,
		BuyerAliasID: actor.AliasID,
		Qty:          qty,
		StartTicket:  startTicket,
		EndTicket:    endTicket,
	})

	if updated.TicketsSold >= updated.ThresholdCount {
		updated, err = s.selectWinner(ctx, uow, updated)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PurchaseResult{
		Listing:  updated,
		Purchase: purchase,
		Ranges:   []*models.TicketRange{ticketRange},
	}, nil
}

// replayPurchase returns the stored result for a previously used idempotency
// key, or nil if the key is fresh
func (s *purchaseService) replayPurchase(ctx context.Context, uow UnitOfWork, idempotencyKey string) (*models.PurchaseResult, error) {
	existing, err := uow.TicketPurchaseRepository().GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	if existing == nil {
		return nil, nil
	}

	ranges, err := uow.TicketRangeRepository().ListByPurchase(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranges for purchase %s: %w", existing.ID, err)
	}
	listing, err := uow.ListingRepository().GetByID(ctx, existing.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing for purchase %s: %w", existing.ID, err)
	}

	log.WithFields(log.Fields{
		"purchaseID": existing.ID,
		"listingID":  existing.ListingID,
	}).Info("Replaying purchase for idempotency key")

	return &models.PurchaseResult{
		Listing:    listing,
		Purchase:   existing,
		Ranges:     ranges,
		Idempotent: true,
	}, nil
}

// closeExpiredListing transitions a past-end-date listing to closed and
// commits that transition on its own, then reports the rejected sale. The
// close must survive the failed purchase so no ticket is ever sold after
// expiry.
func (s *purchaseService) closeExpiredListing(ctx context.Context, uow UnitOfWork, listing *models.Listing) error {
	closed, err := uow.ListingRepository().SetStatus(ctx, listing.ID, models.ListingStatusClosed)
	if err != nil {
		return fmt.Errorf("failed to close expired listing: %w", err)
	}

	auditEvent := &models.AuditEvent{
		Action:     models.AuditActionListingClosed,
		TargetType: models.AuditTargetListing,
		TargetID:   closed.ID,
		Metadata: map[string]any{
			"status": string(closed.Status),
		},
	}
	if err := uow.AuditEventRepository().Record(ctx, auditEvent); err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	uow.EventBus().Publish(events.ListingClosedEvent{
		ListingID: closed.ID,
		Reason:    "expired",
	})

	// Nothing else happened in this transaction yet, so committing here only
	// persists the close.
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing close: %w", err)
	}

	return NewInvalidState("listing has ended")
}
