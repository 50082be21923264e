package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/artiqmind/Lookali/internal/domain"
	"github.com/artiqmind/Lookali/internal/geo"
	"github.com/artiqmind/Lookali/internal/store"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
	"github.com/artiqmind/Lookali/pkg/slug"
)

// Service applies catalog mutations to the listing store and the spatial
// index. It is the only writer of either structure, which is what makes a
// mutation atomic from the search path's point of view: writes are ordered
// so a listing is never geo-searchable without being resolvable in the
// store.
type Service struct {
	store  *store.ListingStore
	geo    *geo.Index
	logger *slog.Logger
}

// NewService creates a catalog service over the given store and index.
func NewService(st *store.ListingStore, idx *geo.Index, logger *slog.Logger) *Service {
	return &Service{store: st, geo: idx, logger: logger}
}

// Upsert validates and publishes a listing, replacing any previous record
// with the same id. The store is written before the index so a concurrent
// radius query never surfaces an id the store cannot resolve.
func (s *Service) Upsert(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	l, err := s.prepare(l)
	if err != nil {
		return domain.Listing{}, err
	}

	if err := s.store.Upsert(l); err != nil {
		return domain.Listing{}, err
	}
	if err := s.geo.Insert(l.ID, l.Location); err != nil {
		// Coordinates were validated in prepare; an index failure here
		// leaves a store-only listing that search simply never finds.
		s.logger.ErrorContext(ctx, "geo insert failed after store upsert",
			slog.String("listing_id", l.ID),
			slog.Any("error", err),
		)
		return domain.Listing{}, err
	}

	listingsIndexed.Set(float64(s.geo.Len()))
	s.logger.InfoContext(ctx, "listing upserted",
		slog.String("listing_id", l.ID),
		slog.String("seller_id", l.SellerID),
	)
	return l, nil
}

// Delete removes a listing from both structures. The index is cleared
// first so there is no window where a listing is geo-searchable but gone
// from the store.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("listing id is required")
	}

	geoErr := s.geo.Remove(id)
	storeErr := s.store.Delete(id)

	// The listing counts as existing if either structure knew it; a
	// half-present record from an earlier partial failure is cleaned up
	// rather than reported as NotFound.
	if geoErr != nil && storeErr != nil {
		return storeErr
	}

	listingsIndexed.Set(float64(s.geo.Len()))
	s.logger.InfoContext(ctx, "listing deleted", slog.String("listing_id", id))
	return nil
}

// Get returns a single listing by id.
func (s *Service) Get(_ context.Context, id string) (domain.Listing, error) {
	if id == "" {
		return domain.Listing{}, apperrors.InvalidArgument("listing id is required")
	}
	return s.store.Get(id)
}

// BulkUpsert publishes a batch of listings. The batch is validated as a
// whole before any write, so a bad record rejects the entire request
// instead of leaving a partially applied batch.
func (s *Service) BulkUpsert(ctx context.Context, listings []domain.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, apperrors.InvalidArgument("empty listing batch")
	}

	prepared := make([]domain.Listing, len(listings))
	for i, l := range listings {
		p, err := s.prepare(l)
		if err != nil {
			return 0, apperrors.Wrap(err, "listing "+l.ID)
		}
		prepared[i] = p
	}

	for _, l := range prepared {
		if _, err := s.Upsert(ctx, l); err != nil {
			return 0, err
		}
	}
	return len(prepared), nil
}

// prepare validates a listing and fills derived fields.
func (s *Service) prepare(l domain.Listing) (domain.Listing, error) {
	switch {
	case l.ID == "":
		return l, apperrors.InvalidArgument("listing id is required")
	case l.SellerID == "":
		return l, apperrors.InvalidArgument("seller_id is required")
	case l.Name == "":
		return l, apperrors.InvalidArgument("name is required")
	case l.Price < 0:
		return l, apperrors.InvalidArgument("price must be non-negative")
	case !l.Location.Valid():
		return l, apperrors.InvalidArgumentf("invalid coordinates: lat=%g lon=%g", l.Location.Lat, l.Location.Lon)
	case !domain.IsValidAvailability(string(l.Availability)):
		return l, apperrors.InvalidArgumentf("unknown availability %q", l.Availability)
	case l.Rating < 0 || l.Rating > 5:
		return l, apperrors.InvalidArgument("rating must be within [0,5]")
	case l.ReviewCount < 0:
		return l, apperrors.InvalidArgument("review_count must be non-negative")
	}
	if l.OriginalPrice != nil && *l.OriginalPrice < l.Price {
		return l, apperrors.InvalidArgument("original_price must be at least price")
	}
	for _, opt := range l.DeliveryOptions {
		if !domain.IsValidDeliveryOption(string(opt)) {
			return l, apperrors.InvalidArgumentf("unknown delivery option %q", opt)
		}
	}

	if l.Slug == "" {
		l.Slug = slug.Make(l.Name)
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return l, nil
}
