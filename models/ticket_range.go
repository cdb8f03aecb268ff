package models

import "time"

// TicketRange is a contiguous, inclusive block of ticket numbers allocated to
// one purchase. Ranges for a listing are pairwise disjoint and their union is
// exactly [1, ticketsSold]. Created once, never mutated.
type TicketRange struct {
	ID          string    `db:"id"`
	ListingID   string    `db:"listing_id"`
	PurchaseID  string    `db:"purchase_id"`
	StartTicket int       `db:"start_ticket"`
	EndTicket   int       `db:"end_ticket"`
	CreatedAt   time.Time `db:"created_at"`
}

// Contains reports whether the ticket number falls inside the range.
// Both bounds are inclusive.
func (r *TicketRange) Contains(ticket int) bool {
	return ticket >= r.StartTicket && ticket <= r.EndTicket
}

// Size returns the number of tickets in the range
func (r *TicketRange) Size() int {
	return r.EndTicket - r.StartTicket + 1
}
