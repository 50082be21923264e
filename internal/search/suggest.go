package search

import (
	"context"
	"sort"
	"strings"

	"github.com/artiqmind/Lookali/internal/domain"
)

const maxSuggestLimit = 20

// Suggest returns up to limit distinct listing names whose name or category
// starts with the given prefix, ordered alphabetically. Matching is
// case-insensitive and token-aware, so "aro" suggests "Bicicleta Aro 29".
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 || limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	seen := make(map[string]struct{})
	var names []string
	s.store.Range(func(l domain.Listing) bool {
		if ctx.Err() != nil {
			return false
		}
		if !matchesPrefix(l, prefix) {
			return true
		}
		key := strings.ToLower(l.Name)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		names = append(names, l.Name)
		return true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func matchesPrefix(l domain.Listing, prefix string) bool {
	if strings.HasPrefix(strings.ToLower(l.Category), prefix) {
		return true
	}
	for _, tok := range strings.Fields(strings.ToLower(l.Name)) {
		if strings.HasPrefix(tok, prefix) {
			return true
		}
	}
	return false
}
