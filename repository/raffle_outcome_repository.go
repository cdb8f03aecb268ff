package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RaffleOutcomeRepository implements the service.RaffleOutcomeRepository interface
type RaffleOutcomeRepository struct {
	q queryable
}

// NewRaffleOutcomeRepository creates a new raffle outcome repository
func NewRaffleOutcomeRepository(db *database.DB) *RaffleOutcomeRepository {
	return &RaffleOutcomeRepository{q: db.Pool}
}

// newRaffleOutcomeRepositoryWithTx creates a new raffle outcome repository with a transaction
func newRaffleOutcomeRepositoryWithTx(tx queryable) *RaffleOutcomeRepository {
	return &RaffleOutcomeRepository{q: tx}
}

// Create inserts the outcome for a listing. The unique constraint on
// listing_id enforces at most one outcome per listing.
func (r *RaffleOutcomeRepository) Create(ctx context.Context, outcome *models.RaffleOutcome) error {
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}

	query := `
		INSERT INTO raffle_outcomes (id, listing_id, winner_alias_id, rng_method, rng_seed_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		outcome.ID,
		outcome.ListingID,
		outcome.WinnerAliasID,
		outcome.RngMethod,
		outcome.RngSeedHash,
	).Scan(&outcome.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create raffle outcome: %w", err)
	}

	return nil
}

// GetByListing retrieves the outcome for a listing, or nil if none exists
func (r *RaffleOutcomeRepository) GetByListing(ctx context.Context, listingID string) (*models.RaffleOutcome, error) {
	query := `
		SELECT id, listing_id, winner_alias_id, rng_method, rng_seed_hash, created_at
		FROM raffle_outcomes
		WHERE listing_id = $1
	`

	var outcome models.RaffleOutcome
	err := r.q.QueryRow(ctx, query, listingID).Scan(
		&outcome.ID,
		&outcome.ListingID,
		&outcome.WinnerAliasID,
		&outcome.RngMethod,
		&outcome.RngSeedHash,
		&outcome.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle outcome for listing %s: %w", listingID, err)
	}

	return &outcome, nil
}
