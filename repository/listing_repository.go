package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const listingColumns = `id, seller_alias_id, title, description, category, ticket_price,
	       currency, threshold_count, end_date, tickets_sold, status, created_at, updated_at`

// ListingRepository implements the service.ListingRepository interface
type ListingRepository struct {
	q queryable
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *database.DB) *ListingRepository {
	return &ListingRepository{q: db.Pool}
}

// newListingRepositoryWithTx creates a new listing repository with a transaction
func newListingRepositoryWithTx(tx queryable) *ListingRepository {
	return &ListingRepository{q: tx}
}

func scanListing(row pgx.Row) (*models.Listing, error) {
	var listing models.Listing
	err := row.Scan(
		&listing.ID,
		&listing.SellerAliasID,
		&listing.Title,
		&listing.Description,
		&listing.Category,
		&listing.TicketPrice,
		&listing.Currency,
		&listing.ThresholdCount,
		&listing.EndDate,
		&listing.TicketsSold,
		&listing.Status,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create inserts a new listing, generating its ID when unset
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}

	query := `
		INSERT INTO listings (id, seller_alias_id, title, description, category,
		                      ticket_price, currency, threshold_count, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING tickets_sold, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		listing.ID,
		listing.SellerAliasID,
		listing.Title,
		listing.Description,
		listing.Category,
		listing.TicketPrice,
		listing.Currency,
		listing.ThresholdCount,
		listing.EndDate,
		listing.Status,
	).Scan(&listing.TicketsSold, &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by its ID
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}

	return listing, nil
}

// GetByIDForUpdate retrieves a listing by ID with a pessimistic row lock.
// Concurrent purchases against the same listing serialize on this lock; it is
// held until the surrounding transaction commits or rolls back.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`

	listing, err := scanListing(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing %s: %w", id, err)
	}

	return listing, nil
}

// Update writes the mutable listing attributes
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	query := `
		UPDATE listings
		SET title = $1, description = $2, category = $3, ticket_price = $4,
		    currency = $5, threshold_count = $6, end_date = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		listing.Title,
		listing.Description,
		listing.Category,
		listing.TicketPrice,
		listing.Currency,
		listing.ThresholdCount,
		listing.EndDate,
		listing.ID,
	).Scan(&listing.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("listing %s not found", listing.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", listing.ID, err)
	}

	return nil
}

// SetStatus transitions the listing's lifecycle status and returns the
// updated row
func (r *ListingRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) (*models.Listing, error) {
	query := `
		UPDATE listings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + listingColumns

	listing, err := scanListing(r.q.QueryRow(ctx, query, status, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("listing %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set status for listing %s: %w", id, err)
	}

	return listing, nil
}

// AddTicketsSold advances the sold counter by qty and returns the updated row
// from the same statement, so callers never act on a stale counter.
func (r *ListingRepository) AddTicketsSold(ctx context.Context, id string, qty int) (*models.Listing, error) {
	query := `
		UPDATE listings
		SET tickets_sold = tickets_sold + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + listingColumns

	listing, err := scanListing(r.q.QueryRow(ctx, query, qty, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("listing %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add tickets sold for listing %s: %w", id, err)
	}

	return listing, nil
}

// List returns listings, optionally filtered by status, newest first
func (r *ListingRepository) List(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

// ListExpiredActive returns active listings whose end date has passed. Used by
// the background sweep; the purchase path also closes lazily on contact.
func (r *ListingRepository) ListExpiredActive(ctx context.Context) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date < NOW()
		ORDER BY end_date
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

// ListBySeller returns all listings owned by the given seller, newest first
func (r *ListingRepository) ListBySeller(ctx context.Context, sellerAliasID string) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE seller_alias_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, sellerAliasID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for seller %s: %w", sellerAliasID, err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}
