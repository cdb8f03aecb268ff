package service

import (
	"context"
	"testing"
	"time"

	"raffler/events"
	"raffler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListingService_CloseExpiredListings(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockListingRepo, mockAuditRepo, bus := listingMocks()

	service := NewListingService(mockFactory)

	past := time.Now().Add(-time.Hour)
	stillActive := &models.Listing{
		ID:            "listing-1",
		SellerAliasID: "seller-1",
		Status:        models.ListingStatusActive,
		EndDate:       &past,
	}
	alreadyClosed := &models.Listing{
		ID:            "listing-2",
		SellerAliasID: "seller-1",
		Status:        models.ListingStatusClosed,
		EndDate:       &past,
	}
	closed := &models.Listing{
		ID:            "listing-1",
		SellerAliasID: "seller-1",
		Status:        models.ListingStatusClosed,
		EndDate:       &past,
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockListingRepo.On("ListExpiredActive", ctx).Return([]*models.Listing{stillActive, alreadyClosed}, nil)
	mockListingRepo.On("GetByIDForUpdate", ctx, "listing-1").Return(stillActive, nil)
	// Closed by a concurrent threshold crossing between the scan and the lock
	mockListingRepo.On("GetByIDForUpdate", ctx, "listing-2").Return(alreadyClosed, nil)
	mockListingRepo.On("SetStatus", ctx, "listing-1", models.ListingStatusClosed).Return(closed, nil)
	mockAuditRepo.On("Record", ctx, mock.MatchedBy(func(e *models.AuditEvent) bool {
		return e.Action == models.AuditActionListingClosed && e.ActorAliasID == nil && e.TargetID == "listing-1"
	})).Return(nil)

	count, err := service.CloseExpiredListings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Len(t, bus.Events, 1)
	closedEvent, ok := bus.Events[0].(events.ListingClosedEvent)
	assert.True(t, ok)
	assert.Equal(t, "listing-1", closedEvent.ListingID)
	assert.Equal(t, "expired", closedEvent.Reason)

	mockListingRepo.AssertExpectations(t)
	mockListingRepo.AssertNotCalled(t, "SetStatus", ctx, "listing-2", mock.Anything)
}
