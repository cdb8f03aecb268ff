package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"raffler/events"
	"raffler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeListing(sold, threshold int) *models.Listing {
	return &models.Listing{
		ID:             "listing-1",
		SellerAliasID:  "seller-1",
		Title:          "Vintage camera",
		Description:    "Working Leica M3",
		Category:       "collectibles",
		TicketPrice:    500,
		Currency:       "USD",
		ThresholdCount: threshold,
		TicketsSold:    sold,
		Status:         models.ListingStatusActive,
	}
}

func buyer() models.Actor {
	return models.Actor{AliasID: "buyer-1", EligibilityVerified: true}
}

func TestPurchaseService_PurchaseTickets_SimpleSale(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)
	bus := &CapturingEventPublisher{}

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)
	mockUoW.SetEventBus(bus)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	listing := activeListing(5, 10)
	updated := activeListing(8, 10)

	// Mock expectations. The service derives a deadline context, so ctx
	// arguments are matched loosely.
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockPurchaseRepo.On("GetByIdempotencyKey", mock.Anything, "key-1").Return(nil, nil)
	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(listing, nil)
	mockEligibility.On("CanParticipate", mock.Anything, "buyer-1").Return(true, nil)
	mockPayments.On("AuthorizeAndCapture", mock.Anything, "listing-1", "buyer-1", 3, int64(1500)).Return("pay-1", nil)
	mockPayments.On("Confirm", mock.Anything, "pay-1").Return(models.PaymentStatusConfirmed, nil)

	mockPurchaseRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.TicketPurchase) bool {
		return p.ListingID == "listing-1" &&
			p.BuyerAliasID == "buyer-1" &&
			p.Qty == 3 &&
			p.PaymentRef == "pay-1" &&
			p.Status == models.PurchaseStatusConfirmed &&
			p.IdempotencyKey != nil && *p.IdempotencyKey == "key-1"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.TicketPurchase).ID = "purchase-1"
	})

	mockRangeRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.TicketRange) bool {
		return r.ListingID == "listing-1" &&
			r.PurchaseID == "purchase-1" &&
			r.StartTicket == 6 &&
			r.EndTicket == 8
	})).Return(nil)

	mockListingRepo.On("AddTicketsSold", mock.Anything, "listing-1", 3).Return(updated, nil)

	mockAuditRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *models.AuditEvent) bool {
		return e.Action == models.AuditActionTicketsPurchased &&
			e.TargetID == "listing-1" &&
			e.Metadata["start_ticket"] == 6 &&
			e.Metadata["end_ticket"] == 8 &&
			e.Metadata["amount"] == int64(1500)
	})).Return(nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 3, "key-1")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.False(t, result.Idempotent)
	assert.Equal(t, models.ListingStatusActive, result.Listing.Status)
	assert.Equal(t, 8, result.Listing.TicketsSold)
	assert.Len(t, result.Ranges, 1)
	assert.Equal(t, 6, result.Ranges[0].StartTicket)
	assert.Equal(t, 8, result.Ranges[0].EndTicket)

	assert.Len(t, bus.Events, 1)
	purchased, ok := bus.Events[0].(events.TicketsPurchasedEvent)
	assert.True(t, ok)
	assert.Equal(t, 6, purchased.StartTicket)
	assert.Equal(t, 8, purchased.EndTicket)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockListingRepo.AssertExpectations(t)
	mockPurchaseRepo.AssertExpectations(t)
	mockRangeRepo.AssertExpectations(t)
	mockAuditRepo.AssertExpectations(t)
	mockPayments.AssertExpectations(t)
	mockEligibility.AssertExpectations(t)
}

func TestPurchaseService_PurchaseTickets_ThresholdCrossingDrawsWinner(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)
	bus := &CapturingEventPublisher{}

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)
	mockUoW.SetEventBus(bus)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	listing := activeListing(9, 10)
	afterSale := activeListing(10, 10)
	closed := activeListing(10, 10)
	closed.Status = models.ListingStatusClosed

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(listing, nil)
	mockEligibility.On("CanParticipate", mock.Anything, "buyer-1").Return(true, nil)
	mockPayments.On("AuthorizeAndCapture", mock.Anything, "listing-1", "buyer-1", 1, int64(500)).Return("pay-2", nil)
	mockPayments.On("Confirm", mock.Anything, "pay-2").Return(models.PaymentStatusConfirmed, nil)

	mockPurchaseRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.TicketPurchase")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.TicketPurchase).ID = "purchase-10"
	})
	mockRangeRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.TicketRange) bool {
		return r.StartTicket == 10 && r.EndTicket == 10
	})).Return(nil)
	mockListingRepo.On("AddTicketsSold", mock.Anything, "listing-1", 1).Return(afterSale, nil)
	mockAuditRepo.On("Record", mock.Anything, mock.AnythingOfType("*models.AuditEvent")).Return(nil)

	// Winner selection inside the same transaction
	mockListingRepo.On("SetStatus", mock.Anything, "listing-1", models.ListingStatusClosed).Return(closed, nil)
	winningRange := &models.TicketRange{
		ID:          "range-w",
		ListingID:   "listing-1",
		PurchaseID:  "purchase-7",
		StartTicket: 1,
		EndTicket:   10,
	}
	mockRangeRepo.On("GetContainingTicket", mock.Anything, "listing-1", mock.MatchedBy(func(ticket int) bool {
		return ticket >= 1 && ticket <= 10
	})).Return([]*models.TicketRange{winningRange}, nil)
	mockPurchaseRepo.On("GetByID", mock.Anything, "purchase-7").Return(&models.TicketPurchase{
		ID:           "purchase-7",
		ListingID:    "listing-1",
		BuyerAliasID: "winner-1",
	}, nil)
	mockOutcomeRepo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.RaffleOutcome) bool {
		return o.ListingID == "listing-1" &&
			o.WinnerAliasID == "winner-1" &&
			o.RngMethod == "crypto/rand.Int" &&
			o.RngSeedHash != ""
	})).Return(nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 1, "")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, models.ListingStatusClosed, result.Listing.Status)
	assert.Equal(t, 10, result.Listing.TicketsSold)

	// Purchase event plus the three close-out events, in order
	assert.Len(t, bus.Events, 4)
	assert.IsType(t, events.TicketsPurchasedEvent{}, bus.Events[0])
	assert.IsType(t, events.ThresholdReachedEvent{}, bus.Events[1])
	winner, ok := bus.Events[2].(events.WinnerSelectedEvent)
	assert.True(t, ok)
	assert.Equal(t, "winner-1", winner.WinnerAliasID)
	closedEvent, ok := bus.Events[3].(events.ListingClosedEvent)
	assert.True(t, ok)
	assert.Equal(t, "threshold_reached", closedEvent.Reason)

	mockListingRepo.AssertExpectations(t)
	mockOutcomeRepo.AssertExpectations(t)
	mockRangeRepo.AssertExpectations(t)
}

func TestPurchaseService_PurchaseTickets_IdempotentReplay(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	key := "key-replay"
	existing := &models.TicketPurchase{
		ID:             "purchase-1",
		ListingID:      "listing-1",
		BuyerAliasID:   "buyer-1",
		Qty:            3,
		IdempotencyKey: &key,
		Status:         models.PurchaseStatusConfirmed,
	}
	ranges := []*models.TicketRange{{ID: "range-1", PurchaseID: "purchase-1", StartTicket: 6, EndTicket: 8}}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockPurchaseRepo.On("GetByIdempotencyKey", mock.Anything, key).Return(existing, nil)
	mockRangeRepo.On("ListByPurchase", mock.Anything, "purchase-1").Return(ranges, nil)
	mockListingRepo.On("GetByID", mock.Anything, "listing-1").Return(activeListing(8, 10), nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 3, key)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, result.Idempotent)
	assert.Equal(t, "purchase-1", result.Purchase.ID)
	assert.Equal(t, ranges, result.Ranges)

	// No lock, no payment, no writes on the replay path
	mockListingRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
	mockPayments.AssertNotCalled(t, "AuthorizeAndCapture", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockPurchaseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestPurchaseService_PurchaseTickets_RetryReplaysAfterLock(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	// A retry racing the first attempt: the fast-path read misses the
	// uncommitted purchase, then the retry blocks on the row lock until the
	// first attempt commits. By the time the lock is granted the purchase
	// exists and the listing is closed (the first attempt crossed the
	// threshold); the retry must replay, not capture again or reject.
	key := "key-race"
	existing := &models.TicketPurchase{
		ID:             "purchase-1",
		ListingID:      "listing-1",
		BuyerAliasID:   "buyer-1",
		Qty:            1,
		IdempotencyKey: &key,
		Status:         models.PurchaseStatusConfirmed,
	}
	ranges := []*models.TicketRange{{ID: "range-1", PurchaseID: "purchase-1", StartTicket: 10, EndTicket: 10}}
	closed := activeListing(10, 10)
	closed.Status = models.ListingStatusClosed

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockPurchaseRepo.On("GetByIdempotencyKey", mock.Anything, key).Return(nil, nil).Once()
	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(closed, nil)
	mockPurchaseRepo.On("GetByIdempotencyKey", mock.Anything, key).Return(existing, nil).Once()
	mockRangeRepo.On("ListByPurchase", mock.Anything, "purchase-1").Return(ranges, nil)
	mockListingRepo.On("GetByID", mock.Anything, "listing-1").Return(closed, nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 1, key)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, result.Idempotent)
	assert.Equal(t, "purchase-1", result.Purchase.ID)
	assert.Equal(t, ranges, result.Ranges)

	// The serialized retry never moves money or writes anything
	mockPayments.AssertNotCalled(t, "AuthorizeAndCapture", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockPurchaseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
	mockPurchaseRepo.AssertExpectations(t)
}

func TestPurchaseService_PurchaseTickets_QtyExceedsRemainingCapacity(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// 9 of 10 sold; asking for 3 must be rejected before any money moves
	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(activeListing(9, 10), nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 3, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodeInvalidState, CodeOf(err))
	assert.Contains(t, err.Error(), "1 left")

	mockEligibility.AssertNotCalled(t, "CanParticipate", mock.Anything, mock.Anything)
	mockPayments.AssertNotCalled(t, "AuthorizeAndCapture", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockListingRepo.AssertNotCalled(t, "AddTicketsSold", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestPurchaseService_PurchaseTickets_PaymentNotConfirmed(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(activeListing(5, 10), nil)
	mockEligibility.On("CanParticipate", mock.Anything, "buyer-1").Return(true, nil)
	mockPayments.On("AuthorizeAndCapture", mock.Anything, "listing-1", "buyer-1", 2, int64(1000)).Return("pay-3", nil)
	mockPayments.On("Confirm", mock.Anything, "pay-3").Return(models.PaymentStatusFailed, nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 2, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodePaymentFailed, CodeOf(err))

	// The rejected payment leaves no state behind
	mockPurchaseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRangeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockListingRepo.AssertNotCalled(t, "AddTicketsSold", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestPurchaseService_PurchaseTickets_CaptureFails(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(activeListing(5, 10), nil)
	mockEligibility.On("CanParticipate", mock.Anything, "buyer-1").Return(true, nil)
	mockPayments.On("AuthorizeAndCapture", mock.Anything, "listing-1", "buyer-1", 1, int64(500)).Return("", errors.New("card declined"))

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 1, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodePaymentFailed, CodeOf(err))
	mockPayments.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestPurchaseService_PurchaseTickets_EligibilityDenied(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	mockEligibility := new(MockEligibilityGate)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, mockPayments, mockEligibility)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(activeListing(5, 10), nil)
	mockEligibility.On("CanParticipate", mock.Anything, "buyer-1").Return(false, nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 1, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodeForbidden, CodeOf(err))

	// Rejected before any money moves
	mockPayments.AssertNotCalled(t, "AuthorizeAndCapture", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseService_PurchaseTickets_ListingNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, new(MockPaymentGateway), new(MockEligibilityGate))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "missing").Return(nil, nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "missing", 1, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodeNotFound, CodeOf(err))
}

func TestPurchaseService_PurchaseTickets_ListingNotActive(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)

	service := NewPurchaseService(mockFactory, new(MockPaymentGateway), new(MockEligibilityGate))

	draft := activeListing(0, 10)
	draft.Status = models.ListingStatusDraft

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(draft, nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 1, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodeInvalidState, CodeOf(err))
}

func TestPurchaseService_PurchaseTickets_ExpiredListingClosedAsSideEffect(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockListingRepo := new(MockListingRepository)
	mockPurchaseRepo := new(MockTicketPurchaseRepository)
	mockRangeRepo := new(MockTicketRangeRepository)
	mockOutcomeRepo := new(MockRaffleOutcomeRepository)
	mockAuditRepo := new(MockAuditEventRepository)
	mockPayments := new(MockPaymentGateway)
	bus := &CapturingEventPublisher{}

	mockUoW.SetRepositories(mockListingRepo, mockPurchaseRepo, mockRangeRepo, mockOutcomeRepo, mockAuditRepo)
	mockUoW.SetEventBus(bus)

	service := NewPurchaseService(mockFactory, mockPayments, new(MockEligibilityGate))

	past := time.Now().Add(-time.Hour)
	expired := activeListing(5, 10)
	expired.EndDate = &past
	closed := activeListing(5, 10)
	closed.EndDate = &past
	closed.Status = models.ListingStatusClosed

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("GetByIDForUpdate", mock.Anything, "listing-1").Return(expired, nil)
	mockListingRepo.On("SetStatus", mock.Anything, "listing-1", models.ListingStatusClosed).Return(closed, nil)
	mockAuditRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *models.AuditEvent) bool {
		return e.Action == models.AuditActionListingClosed && e.ActorAliasID == nil
	})).Return(nil)

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 1, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodeInvalidState, CodeOf(err))

	// The close is committed even though the purchase is rejected
	mockUoW.AssertCalled(t, "Commit")
	mockPayments.AssertNotCalled(t, "AuthorizeAndCapture", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	assert.Len(t, bus.Events, 1)
	closedEvent, ok := bus.Events[0].(events.ListingClosedEvent)
	assert.True(t, ok)
	assert.Equal(t, "expired", closedEvent.Reason)
}

func TestPurchaseService_PurchaseTickets_NonPositiveQuantity(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewPurchaseService(mockFactory, new(MockPaymentGateway), new(MockEligibilityGate))

	result, err := service.PurchaseTickets(ctx, buyer(), "listing-1", 0, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ErrCodeInvalidState, CodeOf(err))
	mockFactory.AssertNotCalled(t, "Create")
}
