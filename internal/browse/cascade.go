package browse

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/model"
)

// maxCascadeRounds bounds Sync when auto-resolution keeps re-arming it.
const maxCascadeRounds = 16

// Sync drains pending cascade fetches. A fetch that auto-resolved a
// dimension arms skipNext, so the change it caused sends no request.
func (s *Session) Sync(ctx context.Context) {
	for round := 0; s.pending; round++ {
		if round == maxCascadeRounds {
			s.log.Debug("cascade did not settle", zap.Int("rounds", round))
			s.pending = false
			return
		}
		s.pending = false
		if s.skipNext {
			s.skipNext = false
			continue
		}
		if ctx.Err() != nil {
			return
		}
		s.fetch(ctx)
	}
}

// requestPrefix is the part of the order sent as known context: up to and
// including the anchor.
func (s *Session) requestPrefix() []model.Dimension {
	if s.anchor == "" {
		return s.order
	}
	i := lo.IndexOf(s.order, s.anchor)
	if i < 0 {
		return s.order
	}
	return s.order[:i+1]
}

func (s *Session) fetch(ctx context.Context) {
	q := s.query(s.requestPrefix())
	s.fetches++
	s.log.Debug("cascading fetch", zap.Any("values", q.Values))

	opts, err := s.catalog.CascadingFilters(ctx, q)
	if err != nil {
		s.log.Debug("cascading fetch failed", zap.Error(err))
		s.lastErr = err
		for _, d := range s.ordering {
			s.options[d] = []model.Option{}
		}
		return
	}
	s.lastErr = nil

	for dim, list := range opts.Lists {
		if !opts.Present[dim] {
			continue
		}
		if err := s.names.Learn(ctx, dim, list); err != nil {
			s.log.Debug("name cache write failed", zap.String("dimension", string(dim)), zap.Error(err))
		}
	}

	for _, dim := range s.ordering {
		if !opts.Present[dim] {
			s.options[dim] = []model.Option{}
			continue
		}
		s.reconcile(ctx, dim, opts.Lists[dim])
	}
}

// reconcile applies one dimension's fresh option list.
func (s *Session) reconcile(ctx context.Context, dim model.Dimension, fresh []model.Option) {
	cur := s.values[dim]
	hasCur := func(o model.Option) bool { return o.ID == cur }

	switch {
	case s.locked[dim] && cur != 0:
		if o, ok := lo.Find(fresh, hasCur); ok {
			s.options[dim] = []model.Option{o}
			return
		}
		if name := s.placeholder(ctx, dim, cur); name != "" {
			s.options[dim] = []model.Option{{ID: cur, Name: name}}
			return
		}
		s.log.Debug("dropping unconfirmed selection", zap.String("dimension", string(dim)), zap.Int64("id", cur))
		s.options[dim] = fresh
		s.AutoResolve(dim, 0)

	case len(fresh) == 1 && fresh[0].ID != cur:
		s.options[dim] = fresh
		s.AutoResolve(dim, fresh[0].ID)
		s.skipNext = true

	case cur != 0 && !lo.ContainsBy(fresh, hasCur):
		s.options[dim] = fresh
		s.AutoResolve(dim, 0)

	default:
		s.options[dim] = fresh
	}
}

// placeholder names a locked value the server did not confirm: the cached
// label wins over the currently rendered name.
func (s *Session) placeholder(ctx context.Context, dim model.Dimension, id int64) string {
	if l, ok := s.names.Label(ctx, dim, id); ok && l != "" {
		return l
	}
	if o, ok := lo.Find(s.options[dim], func(o model.Option) bool { return o.ID == id }); ok {
		return o.Name
	}
	return ""
}
