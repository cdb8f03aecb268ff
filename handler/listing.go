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

type createListingRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	TicketPrice    int64      `json:"ticket_price"`
	Currency       string     `json:"currency"`
	ThresholdCount int        `json:"threshold_count"`
	EndDate        *time.Time `json:"end_date"`
}

type updateListingRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Category       *string    `json:"category"`
	TicketPrice    *int64     `json:"ticket_price"`
	Currency       *string    `json:"currency"`
	ThresholdCount *int       `json:"threshold_count"`
	EndDate        *time.Time `json:"end_date"`
}

type listingResponse struct {
	ID             string     `json:"id"`
	SellerAliasID  string     `json:"seller_alias_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	TicketPrice    int64      `json:"ticket_price"`
	Currency       string     `json:"currency"`
	ThresholdCount int        `json:"threshold_count"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	TicketsSold    int        `json:"tickets_sold"`
	Status         string     `json:"status"`
	Odds           float64    `json:"odds"`
	CreatedAt      time.Time  `json:"created_at"`
}

type outcomeResponse struct {
	WinnerAliasID string    `json:"winner_alias_id"`
	RngMethod     string    `json:"rng_method"`
	RngSeedHash   string    `json:"rng_seed_hash"`
	DrawnAt       time.Time `json:"drawn_at"`
}

type listingDetailResponse struct {
	Listing *listingResponse `json:"listing"`
	Outcome *outcomeResponse `json:"outcome,omitempty"`
}

func toListingResponse(l *models.Listing) *listingResponse {
	return &listingResponse{
		ID:             l.ID,
		SellerAliasID:  l.SellerAliasID,
		Title:          l.Title,
		Description:    l.Description,
		Category:       l.Category,
		TicketPrice:    l.TicketPrice,
		Currency:       l.Currency,
		ThresholdCount: l.ThresholdCount,
		EndDate:        l.EndDate,
		TicketsSold:    l.TicketsSold,
		Status:         string(l.Status),
		Odds:           l.Odds(),
		CreatedAt:      l.CreatedAt,
	}
}

func toListingResponses(listings []*models.Listing) []*listingResponse {
	out := make([]*listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

// CreateListing handles POST /v1/listings
func CreateListing(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}

		var req createListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}

		listing, err := listings.CreateListing(r.Context(), actor, service.CreateListingInput{
			Title:          req.Title,
			Description:    req.Description,
			Category:       req.Category,
			TicketPrice:    req.TicketPrice,
			Currency:       req.Currency,
			ThresholdCount: req.ThresholdCount,
			EndDate:        req.EndDate,
		})
		if err != nil {
			if service.CodeOf(err) == "" {
				response.BadRequest(w, err.Error())
				return
			}
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusCreated, toListingResponse(listing))
	}
}

// UpdateListing handles PATCH /v1/listings/{listingID}
func UpdateListing(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}

		var req updateListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}

		listing, err := listings.UpdateListing(r.Context(), actor, mux.Vars(r)["listingID"], service.UpdateListingInput{
			Title:          req.Title,
			Description:    req.Description,
			Category:       req.Category,
			TicketPrice:    req.TicketPrice,
			Currency:       req.Currency,
			ThresholdCount: req.ThresholdCount,
			EndDate:        req.EndDate,
		})
		if err != nil {
			if service.CodeOf(err) == "" {
				response.BadRequest(w, err.Error())
				return
			}
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, toListingResponse(listing))
	}
}

// ActivateListing handles POST /v1/listings/{listingID}/activate
func ActivateListing(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}

		listing, err := listings.ActivateListing(r.Context(), actor, mux.Vars(r)["listingID"])
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, toListingResponse(listing))
	}
}

// CancelListing handles POST /v1/listings/{listingID}/cancel
func CancelListing(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}

		listing, err := listings.CancelListing(r.Context(), actor, mux.Vars(r)["listingID"])
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, toListingResponse(listing))
	}
}

// GetListings handles GET /v1/listings, optionally filtered by ?status=
func GetListings(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *models.ListingStatus
		if s := r.URL.Query().Get("status"); s != "" {
			switch parsed := models.ListingStatus(s); parsed {
			case models.ListingStatusDraft, models.ListingStatusActive, models.ListingStatusClosed, models.ListingStatusCancelled:
				status = &parsed
			default:
				response.BadRequest(w, "unknown status filter")
				return
			}
		}

		result, err := listings.ListListings(r.Context(), status)
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, toListingResponses(result))
	}
}

// GetListing handles GET /v1/listings/{listingID}
func GetListing(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := listings.GetListing(r.Context(), mux.Vars(r)["listingID"])
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		resp := &listingDetailResponse{Listing: toListingResponse(detail.Listing)}
		if detail.Outcome != nil {
			resp.Outcome = &outcomeResponse{
				WinnerAliasID: detail.Outcome.WinnerAliasID,
				RngMethod:     detail.Outcome.RngMethod,
				RngSeedHash:   detail.Outcome.RngSeedHash,
				DrawnAt:       detail.Outcome.CreatedAt,
			}
		}

		response.JSON(w, http.StatusOK, resp)
	}
}

// GetSellerListings handles GET /v1/seller/listings
func GetSellerListings(listings service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}

		result, err := listings.ListSellerListings(r.Context(), actor)
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, toListingResponses(result))
	}
}
