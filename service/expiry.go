package service

import (
	"context"
	"fmt"
	"time"

	"raffler/events"
	"raffler/models"

	log "github.com/sirupsen/logrus"
)

// CloseExpiredListings closes every active listing past its end date. Each
// listing is closed in its own transaction under the same row lock the
// purchase path takes, so a sweep can never race a sale on the same listing.
func (s *listingService) CloseExpiredListings(ctx context.Context) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	expired, err := uow.ListingRepository().ListExpiredActive(ctx)
	uow.Rollback()
	if err != nil {
		return 0, fmt.Errorf("failed to list expired listings: %w", err)
	}

	closed := 0
	for _, listing := range expired {
		if err := s.closeExpired(ctx, listing.ID); err != nil {
			log.WithFields(log.Fields{
				"listingID": listing.ID,
				"error":     err,
			}).Error("Failed to close expired listing")
			continue
		}
		closed++
	}

	if closed > 0 {
		log.WithField("count", closed).Info("Closed expired listings")
	}
	return closed, nil
}

func (s *listingService) closeExpired(ctx context.Context, id string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listing, err := uow.ListingRepository().GetByIDForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to lock listing: %w", err)
	}
	// Re-check under the lock: a concurrent purchase may have closed it via
	// the threshold path, or the row may be gone
	if listing == nil || listing.Status != models.ListingStatusActive || !listing.HasEnded(time.Now()) {
		return nil
	}

	closed, err := uow.ListingRepository().SetStatus(ctx, id, models.ListingStatusClosed)
	if err != nil {
		return fmt.Errorf("failed to close listing: %w", err)
	}

	if err := recordListingAudit(ctx, uow, nil, models.AuditActionListingClosed, closed); err != nil {
		return err
	}

	uow.EventBus().Publish(events.ListingClosedEvent{
		ListingID: closed.ID,
		Reason:    "expired",
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
