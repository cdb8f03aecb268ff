package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"raffler/middleware"
	"raffler/models"
	"raffler/response"
	"raffler/service"

	"github.com/gorilla/mux"
)

type purchaseRequest struct {
	Qty int `json:"qty"`
}

type ticketRangeResponse struct {
	StartTicket int `json:"start_ticket"`
	EndTicket   int `json:"end_ticket"`
}

type purchaseResponse struct {
	PurchaseID  string                 `json:"purchase_id"`
	ListingID   string                 `json:"listing_id"`
	Qty         int                    `json:"qty"`
	Ranges      []*ticketRangeResponse `json:"ranges"`
	Listing     *listingResponse       `json:"listing"`
	Idempotent  bool                   `json:"idempotent"`
	PurchasedAt time.Time              `json:"purchased_at"`
}

func toPurchaseResponse(result *models.PurchaseResult) *purchaseResponse {
	ranges := make([]*ticketRangeResponse, 0, len(result.Ranges))
	for _, r := range result.Ranges {
		ranges = append(ranges, &ticketRangeResponse{StartTicket: r.StartTicket, EndTicket: r.EndTicket})
	}
	return &purchaseResponse{
		PurchaseID:  result.Purchase.ID,
		ListingID:   result.Purchase.ListingID,
		Qty:         result.Purchase.Qty,
		Ranges:      ranges,
		Listing:     toListingResponse(result.Listing),
		Idempotent:  result.Idempotent,
		PurchasedAt: result.Purchase.CreatedAt,
	}
}

// PurchaseTickets handles POST /v1/listings/{listingID}/purchases. The
// optional Idempotency-Key header makes retries safe.
func PurchaseTickets(purchases service.PurchaseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}

		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}

		result, err := purchases.PurchaseTickets(r.Context(), actor, mux.Vars(r)["listingID"], req.Qty, r.Header.Get("Idempotency-Key"))
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		statusCode := http.StatusCreated
		if result.Idempotent {
			statusCode = http.StatusOK
		}
		response.JSON(w, statusCode, toPurchaseResponse(result))
	}
}
