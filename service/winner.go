package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"raffler/events"
	"raffler/models"

	log "github.com/sirupsen/logrus"
)

// rngMethod identifies how winning tickets are drawn, recorded on every
// outcome for later audits
const rngMethod = "crypto/rand.Int"

// selectWinner closes the listing and draws the winner. Runs exactly once per
// listing, inside the same transaction that made the sold counter reach the
// threshold. It never retries: a draw that cannot be resolved to exactly one
// range means the range partition invariant was broken elsewhere, and the
// whole purchase transaction must abort.
func (s *purchaseService) selectWinner(ctx context.Context, uow UnitOfWork, listing *models.Listing) (*models.Listing, error) {
	closed, err := uow.ListingRepository().SetStatus(ctx, listing.ID, models.ListingStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to close listing: %w", err)
	}

	if err := uow.AuditEventRepository().Record(ctx, &models.AuditEvent{
		Action:     models.AuditActionThresholdReached,
		TargetType: models.AuditTargetListing,
		TargetID:   closed.ID,
		Metadata: map[string]any{
			"tickets_sold": closed.TicketsSold,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record audit event: %w", err)
	}

	winningTicket, err := drawWinningTicket(closed.TicketsSold)
	if err != nil {
		return nil, fmt.Errorf("failed to draw winning ticket: %w", err)
	}

	matches, err := uow.TicketRangeRepository().GetContainingTicket(ctx, closed.ID, winningTicket)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve winning ticket: %w", err)
	}
	if len(matches) != 1 {
		log.WithFields(log.Fields{
			"listingID":     closed.ID,
			"winningTicket": winningTicket,
			"ticketsSold":   closed.TicketsSold,
			"matchCount":    len(matches),
		}).Error("Ticket ranges do not partition the sold interval")
		return nil, NewInvariantViolation("ticket %d of listing %s maps to %d ranges, want exactly 1", winningTicket, closed.ID, len(matches))
	}
	winningRange := matches[0]

	purchase, err := uow.TicketPurchaseRepository().GetByID(ctx, winningRange.PurchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winning purchase: %w", err)
	}
	if purchase == nil {
		return nil, NewInvariantViolation("winning range %s references missing purchase %s", winningRange.ID, winningRange.PurchaseID)
	}

	seedHash, err := commitSeedHash(closed.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to commit seed hash: %w", err)
	}

	outcome := &models.RaffleOutcome{
		ListingID:     closed.ID,
		WinnerAliasID: purchase.BuyerAliasID,
		RngMethod:     rngMethod,
		RngSeedHash:   seedHash,
	}
	if err := uow.RaffleOutcomeRepository().Create(ctx, outcome); err != nil {
		return nil, fmt.Errorf("failed to create raffle outcome: %w", err)
	}

	if err := uow.AuditEventRepository().Record(ctx, &models.AuditEvent{
		Action:     models.AuditActionWinnerSelected,
		TargetType: models.AuditTargetListing,
		TargetID:   closed.ID,
		Metadata: map[string]any{
			"winning_ticket":  winningTicket,
			"winner_alias_id": purchase.BuyerAliasID,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record audit event: %w", err)
	}

	if err := uow.AuditEventRepository().Record(ctx, &models.AuditEvent{
		Action:     models.AuditActionListingClosed,
		TargetType: models.AuditTargetListing,
		TargetID:   closed.ID,
		Metadata: map[string]any{
			"status": string(closed.Status),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record audit event: %w", err)
	}

	uow.EventBus().Publish(events.ThresholdReachedEvent{
		ListingID:   closed.ID,
		TicketsSold: closed.TicketsSold,
	})
	uow.EventBus().Publish(events.WinnerSelectedEvent{
		ListingID:     closed.ID,
		WinningTicket: winningTicket,
		WinnerAliasID: purchase.BuyerAliasID,
	})
	uow.EventBus().Publish(events.ListingClosedEvent{
		ListingID: closed.ID,
		Reason:    "threshold_reached",
	})

	return closed, nil
}

// drawWinningTicket draws a ticket number uniformly at random from
// [1, ticketsSold] using the crypto/rand source, so every sold ticket has
// equal probability and the draw cannot be predicted.
func drawWinningTicket(ticketsSold int) (int, error) {
	if ticketsSold <= 0 {
		return 0, fmt.Errorf("cannot draw from %d sold tickets", ticketsSold)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(ticketsSold)))
	if err != nil {
		return 0, fmt.Errorf("random generation failed: %w", err)
	}

	return int(n.Int64()) + 1, nil
}

// commitSeedHash produces a one-way commitment to the randomness source so
// the draw's integrity can be audited later without exposing raw entropy
func commitSeedHash(listingID string) (string, error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to read entropy: %w", err)
	}

	sum := sha256.Sum256(fmt.Appendf(nil, "%s-%d-%x", listingID, time.Now().UnixNano(), entropy))
	return hex.EncodeToString(sum[:]), nil
}
