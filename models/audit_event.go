package models

import "time"

// Audit action names. Each action carries a fixed metadata shape (schema
// version 1) so the trail stays machine-readable:
//
//	AuditActionListingCreated:   {"status"}
//	AuditActionListingUpdated:   {"status"}
//	AuditActionListingActivated: {"status"}
//	AuditActionListingCancelled: {"status"}
//	AuditActionTicketsPurchased: {"qty", "purchase_id", "start_ticket", "end_ticket", "amount"}
//	AuditActionThresholdReached: {"tickets_sold"}
//	AuditActionWinnerSelected:   {"winning_ticket", "winner_alias_id"}
//	AuditActionListingClosed:    {"status"}
const (
	AuditActionListingCreated   = "LISTING_CREATED"
	AuditActionListingUpdated   = "LISTING_UPDATED"
	AuditActionListingActivated = "LISTING_ACTIVATED"
	AuditActionListingCancelled = "LISTING_CANCELLED"
	AuditActionTicketsPurchased = "TICKETS_PURCHASED"
	AuditActionThresholdReached = "LISTING_THRESHOLD_REACHED"
	AuditActionWinnerSelected   = "WINNER_SELECTED"
	AuditActionListingClosed    = "LISTING_CLOSED"
)

// AuditTargetListing is the target type for listing-scoped events
const AuditTargetListing = "listing"

// AuditEvent is one append-only entry in the audit trail. ActorAliasID is nil
// for system-initiated transitions (threshold reached, winner selected).
// Events are never updated or deleted; ordering by creation time is the
// canonical history.
type AuditEvent struct {
	ID           int64          `db:"id"`
	ActorAliasID *string        `db:"actor_alias_id"`
	Action       string         `db:"action"`
	TargetType   string         `db:"target_type"`
	TargetID     string         `db:"target_id"`
	Metadata     map[string]any `db:"metadata"`
	CreatedAt    time.Time      `db:"created_at"`
}
