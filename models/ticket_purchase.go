package models

import "time"

// PurchaseStatus represents the payment outcome recorded on a purchase
type PurchaseStatus string

const (
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// PaymentStatus is the gateway's answer to a confirmation request
type PaymentStatus string

const (
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// TicketPurchase represents one confirmed buy of a contiguous block of tickets.
// Created atomically with its TicketRange and the listing counter update;
// immutable thereafter.
type TicketPurchase struct {
	ID             string         `db:"id"`
	ListingID      string         `db:"listing_id"`
	BuyerAliasID   string         `db:"buyer_alias_id"`
	Qty            int            `db:"qty"`
	PaymentRef     string         `db:"payment_ref"`
	IdempotencyKey *string        `db:"idempotency_key"`
	Status         PurchaseStatus `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
}

// PurchaseResult is returned to the buyer after a purchase attempt.
// Idempotent is true when the result was replayed from a previous request
// carrying the same idempotency key.
type PurchaseResult struct {
	Listing    *Listing
	Purchase   *TicketPurchase
	Ranges     []*TicketRange
	Idempotent bool
}
