package models

import "time"

// ListingStatus represents the lifecycle state of a listing
type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusClosed    ListingStatus = "closed"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// Listing represents a raffle listing: a batch of tickets at a fixed price
// with a sell-through threshold that triggers the winner draw
type Listing struct {
	ID             string        `db:"id"`
	SellerAliasID  string        `db:"seller_alias_id"`
	Title          string        `db:"title"`
	Description    string        `db:"description"`
	Category       string        `db:"category"`
	TicketPrice    int64         `db:"ticket_price"` // minor currency units
	Currency       string        `db:"currency"`
	ThresholdCount int           `db:"threshold_count"`
	EndDate        *time.Time    `db:"end_date"`
	TicketsSold    int           `db:"tickets_sold"`
	Status         ListingStatus `db:"status"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// IsOwnedBy reports whether aliasID is the listing's seller
func (l *Listing) IsOwnedBy(aliasID string) bool {
	return l.SellerAliasID == aliasID
}

// HasEnded reports whether the listing's end date has passed at the given time.
// Listings without an end date never expire.
func (l *Listing) HasEnded(now time.Time) bool {
	return l.EndDate != nil && l.EndDate.Before(now)
}

// Odds returns the probability of a single ticket winning the draw
func (l *Listing) Odds() float64 {
	if l.ThresholdCount <= 0 {
		return 0
	}
	return 1 / float64(l.ThresholdCount)
}

// ListingDetail is a listing together with its outcome, if one exists
type ListingDetail struct {
	Listing *Listing
	Outcome *RaffleOutcome
}
