package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/artiqmind/Lookali/internal/catalog"
	"github.com/artiqmind/Lookali/internal/domain"
	"github.com/artiqmind/Lookali/pkg/httputil"
	"github.com/artiqmind/Lookali/pkg/validator"
)

// ListingHandler handles HTTP requests for the admin listing endpoints.
type ListingHandler struct {
	catalog   *catalog.Service
	reindexer *catalog.Reindexer
	logger    *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler. The reindexer is
// optional; without it the reindex endpoint reports Unavailable.
func NewListingHandler(svc *catalog.Service, reindexer *catalog.Reindexer, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		catalog:   svc,
		reindexer: reindexer,
		logger:    logger,
	}
}

// --- Request DTOs ---

// ListingRequest is the JSON request body for publishing a listing.
type ListingRequest struct {
	SellerID        string   `json:"seller_id" validate:"required"`
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	Slug            string   `json:"slug"`
	Category        string   `json:"category" validate:"required"`
	Price           int64    `json:"price" validate:"min=0"`
	OriginalPrice   *int64   `json:"original_price"`
	Lat             float64  `json:"lat" validate:"latitude"`
	Lon             float64  `json:"lon" validate:"longitude"`
	Availability    string   `json:"availability" validate:"required,oneof=available limited out_of_stock"`
	Rating          float64  `json:"rating" validate:"min=0,max=5"`
	ReviewCount     int      `json:"review_count" validate:"min=0"`
	IsPromoted      bool     `json:"is_promoted"`
	DeliveryOptions []string `json:"delivery_options" validate:"dive,oneof=pickup delivery"`
	CreatedAt       string   `json:"created_at"`
}

// BulkListingsRequest is the JSON request body for bulk publishing.
type BulkListingsRequest struct {
	Listings []bulkListingItem `json:"listings" validate:"required,min=1,max=500,dive"`
}

type bulkListingItem struct {
	ID string `json:"id" validate:"required"`
	ListingRequest
}

func (req *ListingRequest) toDomain(id string) (domain.Listing, error) {
	l := domain.Listing{
		ID:            id,
		SellerID:      req.SellerID,
		Name:          req.Name,
		Slug:          req.Slug,
		Category:      req.Category,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Location:      domain.Point{Lat: req.Lat, Lon: req.Lon},
		Availability:  domain.Availability(req.Availability),
		Rating:        req.Rating,
		ReviewCount:   req.ReviewCount,
		IsPromoted:    req.IsPromoted,
	}
	for _, opt := range req.DeliveryOptions {
		l.DeliveryOptions = append(l.DeliveryOptions, domain.DeliveryOption(opt))
	}
	if req.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			return l, err
		}
		l.CreatedAt = ts
	}
	return l, nil
}

// --- Handlers ---

// Upsert handles PUT /api/v1/listings/{id}
func (h *ListingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	l, err := req.toDomain(id)
	if err != nil {
		writeParamError(w, "created_at must be RFC3339")
		return
	}

	saved, err := h.catalog.Upsert(r.Context(), l)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: saved})
}

// BulkUpsert handles POST /api/v1/listings/bulk
func (h *ListingHandler) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk endpoint

	var req BulkListingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	listings := make([]domain.Listing, 0, len(req.Listings))
	for _, item := range req.Listings {
		l, err := item.toDomain(item.ID)
		if err != nil {
			writeParamError(w, "created_at must be RFC3339")
			return
		}
		listings = append(listings, l)
	}

	n, err := h.catalog.BulkUpsert(r.Context(), listings)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"upserted": n, "status": "ok"}})
}

// Get handles GET /api/v1/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: l})
}

// Delete handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// Reindex handles POST /api/v1/listings/reindex
func (h *ListingHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if h.reindexer == nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAVAILABLE", Message: "reindexing is not configured"},
		})
		return
	}

	go func() {
		ctx := context.Background()
		if _, err := h.reindexer.Run(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed", slog.Any("error", err))
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}
