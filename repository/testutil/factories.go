package testutil

import (
	"raffler/models"
)

// CreateTestListing creates a draft listing with default values
func CreateTestListing(sellerAliasID string) *models.Listing {
	return &models.Listing{
		SellerAliasID:  sellerAliasID,
		Title:          "Vintage camera",
		Description:    "Working Leica M3 with original case",
		Category:       "collectibles",
		TicketPrice:    500,
		Currency:       "USD",
		ThresholdCount: 10,
		Status:         models.ListingStatusDraft,
	}
}

// CreateTestActiveListing creates an active listing with a specific threshold
func CreateTestActiveListing(sellerAliasID string, threshold int) *models.Listing {
	listing := CreateTestListing(sellerAliasID)
	listing.ThresholdCount = threshold
	listing.Status = models.ListingStatusActive
	return listing
}

// CreateTestPurchase creates a confirmed purchase for a listing
func CreateTestPurchase(listingID, buyerAliasID string, qty int) *models.TicketPurchase {
	return &models.TicketPurchase{
		ListingID:    listingID,
		BuyerAliasID: buyerAliasID,
		Qty:          qty,
		PaymentRef:   "pay-test",
		Status:       models.PurchaseStatusConfirmed,
	}
}

// CreateTestRange creates a ticket range bound to a purchase
func CreateTestRange(listingID, purchaseID string, start, end int) *models.TicketRange {
	return &models.TicketRange{
		ListingID:   listingID,
		PurchaseID:  purchaseID,
		StartTicket: start,
		EndTicket:   end,
	}
}
