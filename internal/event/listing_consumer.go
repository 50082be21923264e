package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/artiqmind/Lookali/internal/catalog"
	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
	"github.com/artiqmind/Lookali/pkg/kafka"
)

// Listing event types published by the catalog management service.
const (
	TypeListingCreated = "listing.created"
	TypeListingUpdated = "listing.updated"
	TypeListingDeleted = "listing.deleted"
)

// Topics consumed by the search indexer.
var (
	TopicListingCreated = kafka.Topic("listing", "created")
	TopicListingUpdated = kafka.Topic("listing", "updated")
	TopicListingDeleted = kafka.Topic("listing", "deleted")
)

// deletedPayload is the body of a listing.deleted event. Create and update
// events carry the full listing record.
type deletedPayload struct {
	ListingID string `json:"listing_id"`
}

// ListingHandler applies catalog change events to the local search state.
type ListingHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewListingHandler creates a handler over the catalog service.
func NewListingHandler(svc *catalog.Service, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{catalog: svc, logger: logger}
}

// Handle routes an event by type. Malformed payloads and validation
// failures are permanent and reported as errors so the consumer's retry
// loop gives up quickly; a missing listing on delete is treated as already
// done, since deletes are idempotent by nature.
func (h *ListingHandler) Handle(ctx context.Context, e *kafka.Event) error {
	switch e.EventType {
	case TypeListingCreated, TypeListingUpdated:
		var l domain.Listing
		if err := e.UnmarshalData(&l); err != nil {
			return apperrors.Wrap(err, "decoding listing payload")
		}
		if l.ID == "" {
			l.ID = e.AggregateID
		}
		_, err := h.catalog.Upsert(ctx, l)
		return err

	case TypeListingDeleted:
		var p deletedPayload
		if err := e.UnmarshalData(&p); err != nil {
			return apperrors.Wrap(err, "decoding delete payload")
		}
		id := p.ListingID
		if id == "" {
			id = e.AggregateID
		}
		err := h.catalog.Delete(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			h.logger.DebugContext(ctx, "delete for unknown listing, already gone",
				slog.String("listing_id", id),
			)
			return nil
		}
		return err

	default:
		// Unknown types on these topics are schema drift, not failures
		// worth a retry loop.
		h.logger.WarnContext(ctx, "ignoring unknown event type",
			slog.String("event_type", e.EventType),
			slog.String("aggregate_id", e.AggregateID),
		)
		return nil
	}
}
