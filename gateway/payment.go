package gateway

import (
	"context"
	"fmt"
	"sync"

	"raffler/models"
	"raffler/service"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NewPaymentGateway returns the payment provider selected by configuration.
// Only the stub provider exists today; an unknown name fails startup rather
// than silently taking money through the wrong provider.
func NewPaymentGateway(provider string) (service.PaymentGateway, error) {
	switch provider {
	case "stub":
		return NewStubPaymentGateway(), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", provider)
	}
}

// StubPaymentGateway is the development payment provider. It captures every
// payment immediately and keeps captured references in memory so Confirm and
// Refund can validate them.
type StubPaymentGateway struct {
	mu       sync.Mutex
	captured map[string]int64
	refunded map[string]string
}

// NewStubPaymentGateway creates a stub payment gateway
func NewStubPaymentGateway() service.PaymentGateway {
	return &StubPaymentGateway{
		captured: make(map[string]int64),
		refunded: make(map[string]string),
	}
}

func (g *StubPaymentGateway) AuthorizeAndCapture(ctx context.Context, listingID, buyerAliasID string, qty int, amount int64) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("invalid payment amount %d", amount)
	}

	paymentRef := uuid.NewString()

	g.mu.Lock()
	g.captured[paymentRef] = amount
	g.mu.Unlock()

	log.WithFields(log.Fields{
		"paymentRef": paymentRef,
		"listingID":  listingID,
		"qty":        qty,
		"amount":     amount,
	}).Debug("Captured payment")

	return paymentRef, nil
}

func (g *StubPaymentGateway) Confirm(ctx context.Context, paymentRef string) (models.PaymentStatus, error) {
	g.mu.Lock()
	_, ok := g.captured[paymentRef]
	g.mu.Unlock()

	if !ok {
		return models.PaymentStatusFailed, fmt.Errorf("unknown payment reference %s", paymentRef)
	}
	return models.PaymentStatusConfirmed, nil
}

func (g *StubPaymentGateway) Refund(ctx context.Context, paymentRef, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.captured[paymentRef]; !ok {
		return fmt.Errorf("unknown payment reference %s", paymentRef)
	}
	if _, ok := g.refunded[paymentRef]; ok {
		return fmt.Errorf("payment %s already refunded", paymentRef)
	}
	g.refunded[paymentRef] = reason

	log.WithFields(log.Fields{
		"paymentRef": paymentRef,
		"reason":     reason,
	}).Info("Refunded payment")

	return nil
}
