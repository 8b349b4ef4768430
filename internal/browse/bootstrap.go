package browse

import (
	"context"

	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// Bootstrap seeds the selection from a parsed deep link. Each desired
// dimension, taken in registry order, is resolved through the name cache;
// resolved ones get a synthetic option, are locked and join the order.
// Unresolvable ones are dropped. It returns the number of resolved
// dimensions and arms the one-shot deep-link search when it is non-zero.
func (s *Session) Bootstrap(ctx context.Context, loc urlsync.Location) int {
	if loc.URI != "" {
		s.location = loc.URI
	}
	resolved := 0
	for _, dim := range s.ordering {
		text, ok := loc.Desired[dim]
		if !ok || text == "" {
			continue
		}
		id, ok := s.names.Resolve(ctx, dim, text)
		if !ok {
			s.log.Debug("deep link value not in name cache", zap.String("dimension", string(dim)), zap.String("text", text))
			continue
		}
		name := urlsync.Decode(text)
		if l, ok := s.names.Label(ctx, dim, id); ok && l != "" {
			name = l
		}
		s.values[dim] = id
		s.options[dim] = []model.Option{{ID: id, Name: name}}
		s.locked[dim] = true
		s.order = append(s.order, dim)
		s.touched = append(s.touched, dim)
		resolved++
	}
	if resolved > 0 {
		s.fixedRanking = true
		s.ranking = s.ordering.Rank(s.touched)
		s.autoSearch = true
	}
	s.anchor = ""
	s.pending = true
	return resolved
}

// Open runs a navigation: bootstrap from the deep link, settle the
// cascade, then run the deep-link search once if anything was selected.
// The location is left as given.
func (s *Session) Open(ctx context.Context, loc urlsync.Location) {
	s.Bootstrap(ctx, loc)
	s.Sync(ctx)
	if s.autoSearch && len(s.order) > 0 {
		s.autoSearch = false
		s.Search(ctx, false)
	}
}
