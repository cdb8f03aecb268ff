package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketPurchaseColumns = `id, listing_id, buyer_alias_id, qty, payment_ref,
	       idempotency_key, status, created_at`

// TicketPurchaseRepository implements the service.TicketPurchaseRepository interface
type TicketPurchaseRepository struct {
	q queryable
}

// NewTicketPurchaseRepository creates a new ticket purchase repository
func NewTicketPurchaseRepository(db *database.DB) *TicketPurchaseRepository {
	return &TicketPurchaseRepository{q: db.Pool}
}

// newTicketPurchaseRepositoryWithTx creates a new ticket purchase repository with a transaction
func newTicketPurchaseRepositoryWithTx(tx queryable) *TicketPurchaseRepository {
	return &TicketPurchaseRepository{q: tx}
}

func scanTicketPurchase(row pgx.Row) (*models.TicketPurchase, error) {
	var purchase models.TicketPurchase
	err := row.Scan(
		&purchase.ID,
		&purchase.ListingID,
		&purchase.BuyerAliasID,
		&purchase.Qty,
		&purchase.PaymentRef,
		&purchase.IdempotencyKey,
		&purchase.Status,
		&purchase.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Create inserts a new ticket purchase, generating its ID when unset
func (r *TicketPurchaseRepository) Create(ctx context.Context, purchase *models.TicketPurchase) error {
	if purchase.ID == "" {
		purchase.ID = uuid.NewString()
	}

	query := `
		INSERT INTO ticket_purchases (id, listing_id, buyer_alias_id, qty,
		                              payment_ref, idempotency_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		purchase.ID,
		purchase.ListingID,
		purchase.BuyerAliasID,
		purchase.Qty,
		purchase.PaymentRef,
		purchase.IdempotencyKey,
		purchase.Status,
	).Scan(&purchase.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket purchase: %w", err)
	}

	return nil
}

// GetByID retrieves a purchase by its ID
func (r *TicketPurchaseRepository) GetByID(ctx context.Context, id string) (*models.TicketPurchase, error) {
	query := `SELECT ` + ticketPurchaseColumns + ` FROM ticket_purchases WHERE id = $1`

	purchase, err := scanTicketPurchase(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket purchase %s: %w", id, err)
	}

	return purchase, nil
}

// GetByIdempotencyKey retrieves the purchase created under the given
// idempotency key, or nil if the key has never been used. The unique
// constraint on the column guarantees at most one match.
func (r *TicketPurchaseRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.TicketPurchase, error) {
	query := `SELECT ` + ticketPurchaseColumns + ` FROM ticket_purchases WHERE idempotency_key = $1`

	purchase, err := scanTicketPurchase(r.q.QueryRow(ctx, query, key))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket purchase by idempotency key: %w", err)
	}

	return purchase, nil
}

// ListByListing returns all purchases for a listing in creation order
func (r *TicketPurchaseRepository) ListByListing(ctx context.Context, listingID string) ([]*models.TicketPurchase, error) {
	query := `SELECT ` + ticketPurchaseColumns + ` FROM ticket_purchases WHERE listing_id = $1 ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases for listing %s: %w", listingID, err)
	}
	defer rows.Close()

	var purchases []*models.TicketPurchase
	for rows.Next() {
		purchase, err := scanTicketPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket purchases: %w", err)
	}

	return purchases, nil
}
