package search

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

// cursor is the decoded form of the opaque pagination token. It snapshots
// the sort key of the last item delivered from each result stream rather
// than a raw offset, so pages stay stable when the catalog is mutated
// between requests.
type cursor struct {
	SortMode string     `json:"s"`
	Organic  *streamKey `json:"o,omitempty"`
	Promoted *streamKey `json:"p,omitempty"`
}

// streamKey captures every field any sort mode can order by. Only the
// fields relevant to the cursor's sort mode matter when resuming; the rest
// ride along so one token shape serves all modes.
type streamKey struct {
	ID          string  `json:"id"`
	Score       float64 `json:"sc"`
	DistanceKm  float64 `json:"d"`
	Price       int64   `json:"pr"`
	CreatedAtNs int64   `json:"ca"`
	Rating      float64 `json:"r"`
	ReviewCount int     `json:"rc"`
}

func keyFor(r domain.RankedResult) *streamKey {
	return &streamKey{
		ID:          r.Listing.ID,
		Score:       r.Score,
		DistanceKm:  r.DistanceKm,
		Price:       r.Listing.Price,
		CreatedAtNs: r.Listing.CreatedAt.UnixNano(),
		Rating:      r.Listing.Rating,
		ReviewCount: r.Listing.ReviewCount,
	}
}

// boundary rebuilds a comparable result from a stream key so the sort
// comparator can decide which items come strictly after it.
func (k *streamKey) boundary() domain.RankedResult {
	return domain.RankedResult{
		Listing: domain.Listing{
			ID:          k.ID,
			Price:       k.Price,
			Rating:      k.Rating,
			ReviewCount: k.ReviewCount,
			CreatedAt:   time.Unix(0, k.CreatedAtNs).UTC(),
		},
		DistanceKm: k.DistanceKm,
		Score:      k.Score,
	}
}

func encodeCursor(c cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", apperrors.Wrap(err, "encoding cursor")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// decodeCursor parses an opaque token and checks it against the request's
// sort mode. A token minted under a different sort mode is rejected rather
// than reinterpreted.
func decodeCursor(token, sortMode string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, apperrors.InvalidArgument("malformed cursor")
	}

	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return cursor{}, apperrors.InvalidArgument("malformed cursor")
	}
	if c.SortMode != sortMode {
		return cursor{}, apperrors.InvalidArgumentf("cursor was issued for sort mode %q", c.SortMode)
	}
	return c, nil
}
