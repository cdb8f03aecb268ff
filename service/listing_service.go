package service

import (
	"context"
	"fmt"

	"raffler/config"
	"raffler/events"
	"raffler/models"
)

type listingService struct {
	uowFactory UnitOfWorkFactory
}

// NewListingService creates a new listing service
func NewListingService(uowFactory UnitOfWorkFactory) ListingService {
	return &listingService{
		uowFactory: uowFactory,
	}
}

func (s *listingService) CreateListing(ctx context.Context, actor models.Actor, input CreateListingInput) (*models.Listing, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if input.Category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if input.TicketPrice < 0 {
		return nil, fmt.Errorf("ticket price must not be negative")
	}
	if input.ThresholdCount <= 0 {
		return nil, fmt.Errorf("threshold count must be positive")
	}

	currency := input.Currency
	if currency == "" {
		currency = config.Get().DefaultCurrency
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	listing := &models.Listing{
		SellerAliasID:  actor.AliasID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		TicketPrice:    input.TicketPrice,
		Currency:       currency,
		ThresholdCount: input.ThresholdCount,
		EndDate:        input.EndDate,
		Status:         models.ListingStatusDraft,
	}

	if err := uow.ListingRepository().Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := recordListingAudit(ctx, uow, &actor.AliasID, models.AuditActionListingCreated, listing); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ListingCreatedEvent{
		ListingID:     listing.ID,
		SellerAliasID: listing.SellerAliasID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return listing, nil
}

func (s *listingService) UpdateListing(ctx context.Context, actor models.Actor, id string, input UpdateListingInput) (*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listing, err := uow.ListingRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, NewNotFound("listing %s not found", id)
	}
	if !listing.IsOwnedBy(actor.AliasID) {
		return nil, NewForbidden("not the seller of listing %s", id)
	}
	if listing.Status != models.ListingStatusDraft {
		return nil, NewInvalidState("only draft listings can be updated")
	}

	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Category != nil {
		listing.Category = *input.Category
	}
	if input.TicketPrice != nil {
		if *input.TicketPrice < 0 {
			return nil, fmt.Errorf("ticket price must not be negative")
		}
		listing.TicketPrice = *input.TicketPrice
	}
	if input.Currency != nil {
		listing.Currency = *input.Currency
	}
	if input.ThresholdCount != nil {
		if *input.ThresholdCount <= 0 {
			return nil, fmt.Errorf("threshold count must be positive")
		}
		listing.ThresholdCount = *input.ThresholdCount
	}
	if input.EndDate != nil {
		listing.EndDate = input.EndDate
	}

	if err := uow.ListingRepository().Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if err := recordListingAudit(ctx, uow, &actor.AliasID, models.AuditActionListingUpdated, listing); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return listing, nil
}

func (s *listingService) ActivateListing(ctx context.Context, actor models.Actor, id string) (*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listing, err := uow.ListingRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, NewNotFound("listing %s not found", id)
	}
	if !listing.IsOwnedBy(actor.AliasID) {
		return nil, NewForbidden("not the seller of listing %s", id)
	}
	if !actor.EligibilityVerified {
		return nil, NewForbidden("identity verification required to activate a listing")
	}
	if listing.Status != models.ListingStatusDraft {
		return nil, NewInvalidState("only draft listings can be activated")
	}

	activated, err := uow.ListingRepository().SetStatus(ctx, id, models.ListingStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to activate listing: %w", err)
	}

	if err := recordListingAudit(ctx, uow, &actor.AliasID, models.AuditActionListingActivated, activated); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ListingActivatedEvent{
		ListingID:     activated.ID,
		SellerAliasID: activated.SellerAliasID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return activated, nil
}

func (s *listingService) CancelListing(ctx context.Context, actor models.Actor, id string) (*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the row: an active listing may be racing with purchases
	listing, err := uow.ListingRepository().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	if listing == nil {
		return nil, NewNotFound("listing %s not found", id)
	}
	if !listing.IsOwnedBy(actor.AliasID) {
		return nil, NewForbidden("not the seller of listing %s", id)
	}
	switch listing.Status {
	case models.ListingStatusDraft:
		// always cancellable
	case models.ListingStatusActive:
		if listing.TicketsSold > 0 {
			return nil, NewInvalidState("cannot cancel a listing with sold tickets")
		}
	default:
		return nil, NewInvalidState("listing is already %s", listing.Status)
	}

	cancelled, err := uow.ListingRepository().SetStatus(ctx, id, models.ListingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel listing: %w", err)
	}

	if err := recordListingAudit(ctx, uow, &actor.AliasID, models.AuditActionListingCancelled, cancelled); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cancelled, nil
}

func (s *listingService) ListListings(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listings, err := uow.ListingRepository().List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	return listings, nil
}

func (s *listingService) GetListing(ctx context.Context, id string) (*models.ListingDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listing, err := uow.ListingRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, NewNotFound("listing %s not found", id)
	}

	outcome, err := uow.RaffleOutcomeRepository().GetByListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle outcome: %w", err)
	}

	return &models.ListingDetail{Listing: listing, Outcome: outcome}, nil
}

func (s *listingService) ListSellerListings(ctx context.Context, actor models.Actor) ([]*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listings, err := uow.ListingRepository().ListBySeller(ctx, actor.AliasID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller listings: %w", err)
	}

	return listings, nil
}

// recordListingAudit appends a lifecycle audit event carrying the listing's
// status after the transition
func recordListingAudit(ctx context.Context, uow UnitOfWork, actorAliasID *string, action string, listing *models.Listing) error {
	event := &models.AuditEvent{
		ActorAliasID: actorAliasID,
		Action:       action,
		TargetType:   models.AuditTargetListing,
		TargetID:     listing.ID,
		Metadata: map[string]any{
			"status": string(listing.Status),
		},
	}
	if err := uow.AuditEventRepository().Record(ctx, event); err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}
