package models

import "time"

// RaffleOutcome records the winner draw for a listing. At most one exists per
// listing, created in the same transaction that closed it. The seed hash
// commits to the randomness source so the draw can be audited later without
// exposing raw entropy.
type RaffleOutcome struct {
	ID            string    `db:"id"`
	ListingID     string    `db:"listing_id"`
	WinnerAliasID string    `db:"winner_alias_id"`
	RngMethod     string    `db:"rng_method"`
	RngSeedHash   string    `db:"rng_seed_hash"`
	CreatedAt     time.Time `db:"created_at"`
}
