package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/artiqmind/Lookali/internal/domain"
	"github.com/artiqmind/Lookali/internal/search"
	"github.com/artiqmind/Lookali/pkg/httputil"
)

// SearchHandler handles HTTP requests for the search endpoints.
type SearchHandler struct {
	service *search.Service
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *search.Service, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

func writeParamError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	lat, err := strconv.ParseFloat(params.Get("lat"), 64)
	if err != nil {
		writeParamError(w, "lat must be a valid number")
		return
	}
	lon, err := strconv.ParseFloat(params.Get("lon"), 64)
	if err != nil {
		writeParamError(w, "lon must be a valid number")
		return
	}
	radius, err := strconv.ParseFloat(params.Get("radius_km"), 64)
	if err != nil {
		writeParamError(w, "radius_km must be a valid number")
		return
	}

	query := domain.SearchQuery{
		Text:     strings.TrimSpace(params.Get("q")),
		Center:   domain.Point{Lat: lat, Lon: lon},
		RadiusKm: radius,
		SortMode: params.Get("sort"),
		Cursor:   params.Get("cursor"),
	}

	if v := params.Get("category"); v != "" {
		query.Filters.Category = &v
	}
	if v := params.Get("price_min"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeParamError(w, "price_min must be an integer amount in cents")
			return
		}
		query.Filters.PriceMin = &price
	}
	if v := params.Get("price_max"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeParamError(w, "price_max must be an integer amount in cents")
			return
		}
		query.Filters.PriceMax = &price
	}
	if v := params.Get("availability"); v != "" {
		a := domain.Availability(v)
		query.Filters.Availability = &a
	}
	if v := params.Get("delivery"); v != "" {
		for _, opt := range strings.Split(v, ",") {
			query.Filters.DeliveryOptions = append(query.Filters.DeliveryOptions, domain.DeliveryOption(strings.TrimSpace(opt)))
		}
	}
	if v := params.Get("promoted_only"); v != "" {
		promoted, err := strconv.ParseBool(v)
		if err != nil {
			writeParamError(w, "promoted_only must be a boolean")
			return
		}
		query.Filters.PromotedOnly = promoted
	}
	if v := params.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			writeParamError(w, "page_size must be a positive integer")
			return
		}
		query.PageSize = size
	}

	// Filter, sort, radius, and cursor semantics are validated by the
	// service; it distinguishes a bad request from an empty result.
	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Suggest handles GET /api/v1/search/suggest
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 20 {
			limit = l
		}
	}

	suggestions, err := h.service.Suggest(r.Context(), prefix, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": suggestions}})
}
