package browse

import (
	"context"
	"math"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// Search posts the full selection to the search endpoint and replaces the
// results, sorted by lap time. Failures leave an empty result set. With
// updateURL the session location is replaced by the canonical URL of the
// selection.
func (s *Session) Search(ctx context.Context, updateURL bool) {
	s.searched = true
	q := s.query(s.order)

	items, err := s.catalog.SearchSetups(ctx, q)
	if err != nil {
		s.log.Debug("search failed", zap.Error(err))
		s.lastErr = err
		items = nil
	} else {
		s.lastErr = nil
	}
	s.setResults(items)

	if updateURL {
		s.replaceLocation(ctx)
	}
}

func (s *Session) setResults(items []model.Setup) {
	sorted := append([]model.Setup{}, items...)
	SortByLapTime(sorted)
	s.results = sorted
	s.page = 1
	s.selected = nil
	if len(sorted) > 0 {
		first := sorted[0]
		s.selected = &first
	}
}

func (s *Session) replaceLocation(ctx context.Context) {
	names := map[model.Dimension]string{}
	for _, d := range s.order {
		if n := s.displayName(ctx, d); n != "" {
			names[d] = n
		}
	}
	loc, err := urlsync.Build(s.base, s.category.Slug, names)
	if err != nil {
		s.log.Debug("building location failed", zap.Error(err))
		return
	}
	s.location = loc
}

// SortByLapTime orders setups by ascending lap time; setups without a
// usable lap time go last. The sort is stable.
func SortByLapTime(items []model.Setup) {
	slices.SortStableFunc(items, func(a, b model.Setup) int {
		switch {
		case a.LapTimeMS < b.LapTimeMS:
			return -1
		case a.LapTimeMS > b.LapTimeMS:
			return 1
		}
		return 0
	})
}

// ─── Pagination and Detail ───────────────────────────────────────────────────

// Results returns every sorted result.
func (s *Session) Results() []model.Setup {
	return append([]model.Setup(nil), s.results...)
}

func (s *Session) Page() int     { return s.page }
func (s *Session) PageSize() int { return s.pageSize }

// TotalPages is ceil(results/pageSize), never less than 1.
func (s *Session) TotalPages() int {
	return max(1, int(math.Ceil(float64(len(s.results))/float64(s.pageSize))))
}

// SetPage moves to page n, clamped to the valid range.
func (s *Session) SetPage(n int) int {
	s.page = min(max(n, 1), s.TotalPages())
	return s.page
}

// PageItems returns the results on the current page.
func (s *Session) PageItems() []model.Setup {
	start := (s.page - 1) * s.pageSize
	if start >= len(s.results) {
		return []model.Setup{}
	}
	end := min(start+s.pageSize, len(s.results))
	return append([]model.Setup(nil), s.results[start:end]...)
}

// Selected returns the detail item, or nil.
func (s *Session) Selected() *model.Setup { return s.selected }

// Select makes the result with id the detail item. Sort order is kept.
func (s *Session) Select(id int64) bool {
	r, ok := lo.Find(s.results, func(r model.Setup) bool { return r.ID == id })
	if !ok {
		return false
	}
	s.selected = &r
	return true
}

// View renders the session as a SetupPage.
func (s *Session) View() model.SetupPage {
	page := model.SetupPage{
		Category:   s.category.Slug,
		Location:   s.location,
		Selection:  s.Selection(),
		Order:      s.Order(),
		Searched:   s.searched,
		Page:       s.page,
		PageSize:   s.pageSize,
		TotalPages: s.TotalPages(),
		Total:      len(s.results),
		Items:      s.PageItems(),
		Selected:   s.selected,
		Fetches:    s.Fetches(),
	}
	page.FixedRanking, page.Ranking = s.FixedRanking()
	for _, d := range s.ordering {
		page.Filters = append(page.Filters, model.DimensionOptions{
			Dimension: d,
			Selected:  s.values[d],
			Locked:    s.locked[d],
			Options:   s.Options(d),
		})
	}
	return page
}
