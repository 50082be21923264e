package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
	"github.com/artiqmind/Lookali/pkg/httpclient"
)

// catalogPage is one page of the upstream catalog export API.
type catalogPage struct {
	Listings []domain.Listing `json:"listings"`
	NextPage string           `json:"next_page,omitempty"`
}

// Reindexer rebuilds the local search state from the upstream catalog
// service, paging through its export endpoint. The HTTP client sits behind
// a circuit breaker; when upstream is degraded the reindex fails fast as
// Unavailable instead of hammering it.
type Reindexer struct {
	catalog  *Service
	client   *httpclient.CircuitBreakerClient
	baseURL  string
	pageSize int
	logger   *slog.Logger
}

// NewReindexer creates a reindexer against the catalog export API at
// baseURL.
func NewReindexer(catalog *Service, client *httpclient.CircuitBreakerClient, baseURL string, pageSize int, logger *slog.Logger) *Reindexer {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Reindexer{
		catalog:  catalog,
		client:   client,
		baseURL:  baseURL,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Run pulls every listing from upstream and upserts it locally. Stale
// local listings are not removed; a rebuild on a fresh process is the
// supported path for that. Returns the number of listings ingested.
func (r *Reindexer) Run(ctx context.Context) (int, error) {
	total := 0
	page := ""

	for {
		url := fmt.Sprintf("%s/export?page_size=%d", r.baseURL, r.pageSize)
		if page != "" {
			url += "&page=" + page
		}

		batch, err := r.fetchPage(ctx, url)
		if err != nil {
			reindexRuns.WithLabelValues("error").Inc()
			return total, err
		}

		for _, l := range batch.Listings {
			if _, err := r.catalog.Upsert(ctx, l); err != nil {
				// One malformed upstream record must not abort the run.
				r.logger.WarnContext(ctx, "skipping listing during reindex",
					slog.String("listing_id", l.ID),
					slog.Any("error", err),
				)
				continue
			}
			total++
		}

		if batch.NextPage == "" {
			break
		}
		page = batch.NextPage
	}

	reindexRuns.WithLabelValues("ok").Inc()
	r.logger.InfoContext(ctx, "reindex completed", slog.Int("listings", total))
	return total, nil
}

func (r *Reindexer) fetchPage(ctx context.Context, url string) (catalogPage, error) {
	resp, err := r.client.Get(ctx, url)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) || httpclient.IsServerError(err) {
			return catalogPage{}, apperrors.Unavailable("catalog export unavailable")
		}
		return catalogPage{}, apperrors.Wrap(err, "fetching catalog page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return catalogPage{}, apperrors.Wrap(
			fmt.Errorf("unexpected status %d", resp.StatusCode), "fetching catalog page")
	}

	var page catalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return catalogPage{}, apperrors.Wrap(err, "decoding catalog page")
	}
	return page, nil
}
