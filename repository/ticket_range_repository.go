package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketRangeColumns = `id, listing_id, purchase_id, start_ticket, end_ticket, created_at`

// TicketRangeRepository implements the service.TicketRangeRepository interface
type TicketRangeRepository struct {
	q queryable
}

// NewTicketRangeRepository creates a new ticket range repository
func NewTicketRangeRepository(db *database.DB) *TicketRangeRepository {
	return &TicketRangeRepository{q: db.Pool}
}

// newTicketRangeRepositoryWithTx creates a new ticket range repository with a transaction
func newTicketRangeRepositoryWithTx(tx queryable) *TicketRangeRepository {
	return &TicketRangeRepository{q: tx}
}

func scanTicketRange(row pgx.Row) (*models.TicketRange, error) {
	var tr models.TicketRange
	err := row.Scan(
		&tr.ID,
		&tr.ListingID,
		&tr.PurchaseID,
		&tr.StartTicket,
		&tr.EndTicket,
		&tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// Create inserts a new ticket range, generating its ID when unset
func (r *TicketRangeRepository) Create(ctx context.Context, tr *models.TicketRange) error {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}

	query := `
		INSERT INTO ticket_ranges (id, listing_id, purchase_id, start_ticket, end_ticket)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		tr.ID,
		tr.ListingID,
		tr.PurchaseID,
		tr.StartTicket,
		tr.EndTicket,
	).Scan(&tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket range: %w", err)
	}

	return nil
}

// ListByListing returns all ranges for a listing ordered by start ticket
func (r *TicketRangeRepository) ListByListing(ctx context.Context, listingID string) ([]*models.TicketRange, error) {
	query := `SELECT ` + ticketRangeColumns + ` FROM ticket_ranges WHERE listing_id = $1 ORDER BY start_ticket`

	return r.queryRanges(ctx, query, listingID)
}

// ListByPurchase returns all ranges belonging to a purchase
func (r *TicketRangeRepository) ListByPurchase(ctx context.Context, purchaseID string) ([]*models.TicketRange, error) {
	query := `SELECT ` + ticketRangeColumns + ` FROM ticket_ranges WHERE purchase_id = $1 ORDER BY start_ticket`

	return r.queryRanges(ctx, query, purchaseID)
}

// GetContainingTicket returns every range of the listing whose inclusive
// [start_ticket, end_ticket] interval contains the given ticket number.
// Since ranges partition the sold interval, callers treat anything other
// than exactly one match as a violated invariant.
func (r *TicketRangeRepository) GetContainingTicket(ctx context.Context, listingID string, ticket int) ([]*models.TicketRange, error) {
	query := `
		SELECT ` + ticketRangeColumns + `
		FROM ticket_ranges
		WHERE listing_id = $1 AND start_ticket <= $2 AND end_ticket >= $2
	`

	return r.queryRanges(ctx, query, listingID, ticket)
}

func (r *TicketRangeRepository) queryRanges(ctx context.Context, query string, args ...any) ([]*models.TicketRange, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket ranges: %w", err)
	}
	defer rows.Close()

	var ranges []*models.TicketRange
	for rows.Next() {
		tr, err := scanTicketRange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket range: %w", err)
		}
		ranges = append(ranges, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket ranges: %w", err)
	}

	return ranges, nil
}
