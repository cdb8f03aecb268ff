package handler

import (
	"net/http"
	"strconv"

	"raffler/models"
	"raffler/response"
	"raffler/service"

	"github.com/gorilla/mux"
)

const defaultAuditLimit = 50

// GetListingAuditTrail handles GET /v1/listings/{listingID}/audit
func GetListingAuditTrail(audits service.AuditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := audits.Trail(r.Context(), models.AuditTargetListing, mux.Vars(r)["listingID"], auditLimit(r))
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, events)
	}
}

// GetRecentAuditEvents handles GET /v1/audit
func GetRecentAuditEvents(audits service.AuditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := audits.Recent(r.Context(), auditLimit(r))
		if err != nil {
			response.Error(r.Context(), w, err)
			return
		}

		response.JSON(w, http.StatusOK, events)
	}
}

func auditLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 500 {
			return limit
		}
	}
	return defaultAuditLimit
}
