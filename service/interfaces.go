package service

import (
	"context"
	"time"

	"raffler/events"
	"raffler/models"
)

// ListingRepository defines the interface for listing data access
type ListingRepository interface {
	// Create inserts a new listing, generating its ID when unset
	Create(ctx context.Context, listing *models.Listing) error

	// GetByID retrieves a listing by its ID, or nil if absent
	GetByID(ctx context.Context, id string) (*models.Listing, error)

	// GetByIDForUpdate retrieves a listing with a pessimistic row lock held
	// until the surrounding transaction ends. This is the serialization point
	// for all purchases against one listing.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Listing, error)

	// Update writes the mutable listing attributes
	Update(ctx context.Context, listing *models.Listing) error

	// SetStatus transitions the lifecycle status and returns the updated row
	SetStatus(ctx context.Context, id string, status models.ListingStatus) (*models.Listing, error)

	// AddTicketsSold advances the sold counter atomically and returns the
	// updated row
	AddTicketsSold(ctx context.Context, id string, qty int) (*models.Listing, error)

	// List returns listings, optionally filtered by status, newest first
	List(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error)

	// ListExpiredActive returns active listings whose end date has passed
	ListExpiredActive(ctx context.Context) ([]*models.Listing, error)

	// ListBySeller returns all listings owned by the given seller
	ListBySeller(ctx context.Context, sellerAliasID string) ([]*models.Listing, error)
}

// TicketPurchaseRepository defines the interface for ticket purchase data access
type TicketPurchaseRepository interface {
	// Create inserts a new ticket purchase
	Create(ctx context.Context, purchase *models.TicketPurchase) error

	// GetByID retrieves a purchase by its ID, or nil if absent
	GetByID(ctx context.Context, id string) (*models.TicketPurchase, error)

	// GetByIdempotencyKey retrieves the purchase stored under the key, or nil
	GetByIdempotencyKey(ctx context.Context, key string) (*models.TicketPurchase, error)

	// ListByListing returns all purchases for a listing in creation order
	ListByListing(ctx context.Context, listingID string) ([]*models.TicketPurchase, error)
}

// TicketRangeRepository defines the interface for ticket range data access
type TicketRangeRepository interface {
	// Create inserts a new ticket range
	Create(ctx context.Context, tr *models.TicketRange) error

	// ListByListing returns all ranges for a listing ordered by start ticket
	ListByListing(ctx context.Context, listingID string) ([]*models.TicketRange, error)

	// ListByPurchase returns all ranges belonging to a purchase
	ListByPurchase(ctx context.Context, purchaseID string) ([]*models.TicketRange, error)

	// GetContainingTicket returns every range whose inclusive interval
	// contains the ticket number; exactly one match is expected
	GetContainingTicket(ctx context.Context, listingID string, ticket int) ([]*models.TicketRange, error)
}

// RaffleOutcomeRepository defines the interface for raffle outcome data access
type RaffleOutcomeRepository interface {
	// Create inserts the outcome for a listing; at most one may exist
	Create(ctx context.Context, outcome *models.RaffleOutcome) error

	// GetByListing retrieves the outcome for a listing, or nil if none exists
	GetByListing(ctx context.Context, listingID string) (*models.RaffleOutcome, error)
}

// AuditEventRepository defines the interface for the append-only audit trail
type AuditEventRepository interface {
	// Record appends an audit event in the current transaction scope
	Record(ctx context.Context, event *models.AuditEvent) error

	// ListByTarget returns events for a target, newest first
	ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]*models.AuditEvent, error)

	// ListRecent returns the most recent events across all targets
	ListRecent(ctx context.Context, limit int) ([]*models.AuditEvent, error)
}

// PaymentGateway is the external payment collaborator. The core only captures
// synchronously and treats confirmation as binary.
type PaymentGateway interface {
	// AuthorizeAndCapture requests payment for qty tickets and returns a
	// payment reference
	AuthorizeAndCapture(ctx context.Context, listingID, buyerAliasID string, qty int, amount int64) (string, error)

	// Confirm reports the final status of a payment reference
	Confirm(ctx context.Context, paymentRef string) (models.PaymentStatus, error)

	// Refund reverses a captured payment
	Refund(ctx context.Context, paymentRef, reason string) error
}

// EligibilityGate is the external policy check consulted before any payment
// is attempted
type EligibilityGate interface {
	CanParticipate(ctx context.Context, aliasID string) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// CreateListingInput carries the seller-supplied attributes of a new listing
type CreateListingInput struct {
	Title          string
	Description    string
	Category       string
	TicketPrice    int64
	Currency       string
	ThresholdCount int
	EndDate        *time.Time
}

// UpdateListingInput carries a partial update; nil fields are left unchanged
type UpdateListingInput struct {
	Title          *string
	Description    *string
	Category       *string
	TicketPrice    *int64
	Currency       *string
	ThresholdCount *int
	EndDate        *time.Time
}

// ListingService defines the seller-facing listing lifecycle operations
type ListingService interface {
	// CreateListing creates a new draft listing owned by the actor
	CreateListing(ctx context.Context, actor models.Actor, input CreateListingInput) (*models.Listing, error)

	// UpdateListing edits a draft listing; owner only, drafts only
	UpdateListing(ctx context.Context, actor models.Actor, id string, input UpdateListingInput) (*models.Listing, error)

	// ActivateListing puts a draft on sale; owner only, verified actors only
	ActivateListing(ctx context.Context, actor models.Actor, id string) (*models.Listing, error)

	// CancelListing terminates a listing before any ticket is sold
	CancelListing(ctx context.Context, actor models.Actor, id string) (*models.Listing, error)

	// ListListings returns listings visible to buyers, optionally by status
	ListListings(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error)

	// GetListing returns one listing together with its outcome, if drawn
	GetListing(ctx context.Context, id string) (*models.ListingDetail, error)

	// ListSellerListings returns the actor's own listings
	ListSellerListings(ctx context.Context, actor models.Actor) ([]*models.Listing, error)

	// CloseExpiredListings closes every active listing past its end date and
	// returns how many were closed. Run periodically by the server.
	CloseExpiredListings(ctx context.Context) (int, error)
}

// PurchaseService defines the ticket allocation engine
type PurchaseService interface {
	// PurchaseTickets executes the all-or-nothing purchase transaction:
	// idempotency replay, row lock, state validation, eligibility check,
	// payment capture, range allocation, and - on threshold crossing - the
	// winner draw, all in one transaction.
	PurchaseTickets(ctx context.Context, actor models.Actor, listingID string, qty int, idempotencyKey string) (*models.PurchaseResult, error)
}

// AuditService defines read access to the audit trail
type AuditService interface {
	// Trail returns events for one target, newest first
	Trail(ctx context.Context, targetType, targetID string, limit int) ([]*models.AuditEvent, error)

	// Recent returns the most recent events across all targets
	Recent(ctx context.Context, limit int) ([]*models.AuditEvent, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ListingRepository() ListingRepository
	TicketPurchaseRepository() TicketPurchaseRepository
	TicketRangeRepository() TicketRangeRepository
	RaffleOutcomeRepository() RaffleOutcomeRepository
	AuditEventRepository() AuditEventRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
