package router

import (
	"net/http"

	"raffler/handler"
	"raffler/middleware"
	"raffler/response"
	"raffler/service"

	"github.com/gorilla/mux"
)

// New returns the router for all API handlers
func New(listings service.ListingService, purchases service.PurchaseService, audits service.AuditService) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationID)
	r.Use(middleware.PanicHandler)
	r.Use(middleware.RequestLogging)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w)
	})

	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	baseRouter := r.PathPrefix("/v1").Subrouter()

	// Public catalogue
	baseRouter.HandleFunc("/listings", handler.GetListings(listings)).Methods(http.MethodGet)
	baseRouter.HandleFunc("/listings/{listingID}", handler.GetListing(listings)).Methods(http.MethodGet)
	baseRouter.HandleFunc("/listings/{listingID}/audit", handler.GetListingAuditTrail(audits)).Methods(http.MethodGet)
	baseRouter.HandleFunc("/audit", handler.GetRecentAuditEvents(audits)).Methods(http.MethodGet)

	// Authenticated operations
	authRouter := baseRouter.NewRoute().Subrouter()
	authRouter.Use(middleware.Authenticate)
	authRouter.HandleFunc("/listings", handler.CreateListing(listings)).Methods(http.MethodPost)
	authRouter.HandleFunc("/listings/{listingID}", handler.UpdateListing(listings)).Methods(http.MethodPatch)
	authRouter.HandleFunc("/listings/{listingID}/activate", handler.ActivateListing(listings)).Methods(http.MethodPost)
	authRouter.HandleFunc("/listings/{listingID}/cancel", handler.CancelListing(listings)).Methods(http.MethodPost)
	authRouter.HandleFunc("/listings/{listingID}/purchases", handler.PurchaseTickets(purchases)).Methods(http.MethodPost)
	authRouter.HandleFunc("/seller/listings", handler.GetSellerListings(listings)).Methods(http.MethodGet)

	return r
}
