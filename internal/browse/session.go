// Package browse is the cascading filter engine behind setup browsing.
//
// A Session owns the selection state of one navigation: the selected id
// per dimension, the order in which dimensions were populated, the set of
// deep-link locked dimensions and the rendered option lists. User changes
// truncate everything populated after the changed dimension; system
// changes (auto-resolution) only touch the dimension itself. Sync brings
// the option lists in line with the selection through the remote
// cascading-filter endpoint, and Search fetches, sorts and paginates the
// matching setups.
//
// A Session is not safe for concurrent use.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/filters"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// DefaultPageSize is the number of setups per result page.
const DefaultPageSize = 10

var (
	ErrUnknownDimension = errors.New("dimension not available for this category")
	ErrUnknownOption    = errors.New("no such option")
)

// Catalog is the part of the remote API the engine talks to.
type Catalog interface {
	CascadingFilters(ctx context.Context, q model.FilterQuery) (*model.FilterOptions, error)
	SearchSetups(ctx context.Context, q model.FilterQuery) ([]model.Setup, error)
}

// NameResolver maps display names to ids and back. *namecache.Cache
// satisfies it.
type NameResolver interface {
	Resolve(ctx context.Context, dim model.Dimension, name string) (int64, bool)
	Label(ctx context.Context, dim model.Dimension, id int64) (string, bool)
	Learn(ctx context.Context, dim model.Dimension, opts []model.Option) error
}

// Config tunes a Session.
type Config struct {
	PageSize int
	Base     string // first URL path segment, default "setups"
	Logger   *zap.Logger
}

// Session is the browse state of one navigation.
type Session struct {
	category model.Category
	ordering filters.Ordering
	catalog  Catalog
	names    NameResolver
	log      *zap.Logger
	base     string

	values  map[model.Dimension]int64
	order   []model.Dimension
	locked  map[model.Dimension]bool
	options map[model.Dimension][]model.Option

	// Fixed ranking is active once a deep link seeded the selection.
	fixedRanking bool
	touched      []model.Dimension
	ranking      []model.Dimension

	anchor     model.Dimension // "" means the full order
	pending    bool
	skipNext   bool
	autoSearch bool
	fetches    int
	lastErr    error

	pageSize int
	page     int
	results  []model.Setup
	searched bool
	selected *model.Setup
	location string
}

// New returns a Session for cat. The first Sync fetches the unfiltered
// option lists.
func New(cat model.Category, catalog Catalog, names NameResolver, cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	size := cfg.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	base := cfg.Base
	if base == "" {
		base = urlsync.DefaultBase
	}
	s := &Session{
		category: cat,
		ordering: filters.ForCategory(cat.Slug),
		catalog:  catalog,
		names:    names,
		log:      log.With(zap.String("category", cat.Slug)),
		base:     base,
		values:   map[model.Dimension]int64{},
		locked:   map[model.Dimension]bool{},
		options:  map[model.Dimension][]model.Option{},
		pending:  true,
		pageSize: size,
		page:     1,
	}
	s.location = "/" + base + "/" + urlsync.Slugify(cat.Slug)
	return s
}

// ─── Accessors ───────────────────────────────────────────────────────────────

func (s *Session) Category() model.Category   { return s.category }
func (s *Session) Ordering() filters.Ordering { return append(filters.Ordering(nil), s.ordering...) }
func (s *Session) Location() string           { return s.location }
func (s *Session) Searched() bool             { return s.searched }

// Value returns the selected id for dim, 0 when unselected.
func (s *Session) Value(dim model.Dimension) int64 { return s.values[dim] }

// Order returns the selection order.
func (s *Session) Order() []model.Dimension {
	return append([]model.Dimension(nil), s.order...)
}

// Locked reports whether dim holds an unconfirmed or deep-linked value.
func (s *Session) Locked(dim model.Dimension) bool { return s.locked[dim] }

// Options returns the rendered option list for dim.
func (s *Session) Options(dim model.Dimension) []model.Option {
	return append([]model.Option{}, s.options[dim]...)
}

// FixedRanking reports whether the session was seeded from a deep link,
// and the registry-ranked list of dimensions touched since.
func (s *Session) FixedRanking() (bool, []model.Dimension) {
	return s.fixedRanking, append([]model.Dimension(nil), s.ranking...)
}

// Fetches is the number of cascading-filter requests sent so far.
func (s *Session) Fetches() int { return s.fetches }

// LastError returns the most recent swallowed fetch or search error.
func (s *Session) LastError() error { return s.lastErr }

// Selection returns a copy of the non-empty selections.
func (s *Session) Selection() map[model.Dimension]int64 {
	return lo.PickBy(s.values, func(_ model.Dimension, v int64) bool { return v != 0 })
}

// ─── Selection State ─────────────────────────────────────────────────────────

// UserChange applies a direct user edit. A non-zero id selects a value
// and invalidates every dimension populated after dim; zero clears dim
// and everything populated after it.
func (s *Session) UserChange(dim model.Dimension, id int64) {
	anchor := lo.IndexOf(s.order, dim)
	if anchor < 0 {
		anchor = len(s.order)
	}

	if id != 0 {
		if !lo.Contains(s.order, dim) {
			s.order = append(s.order, dim)
		}
		s.dropFrom(anchor + 1)
		s.values[dim] = id
		s.anchor = dim
	} else {
		s.dropFrom(anchor)
		delete(s.values, dim)
		s.anchor = ""
	}
	delete(s.locked, dim)

	if id == 0 && s.fixedRanking && dim == s.ordering.Top() {
		s.dropFrom(0)
		s.fixedRanking = false
		s.touched = nil
		s.ranking = nil
	} else {
		s.touch(dim)
	}

	s.page = 1
	s.pending = true
}

// Clear is UserChange(dim, 0).
func (s *Session) Clear(dim model.Dimension) {
	s.UserChange(dim, 0)
}

// AutoResolve applies a system-driven change. Only dim's own membership
// in the order changes; later selections survive.
func (s *Session) AutoResolve(dim model.Dimension, id int64) {
	if id != 0 {
		s.values[dim] = id
		if !lo.Contains(s.order, dim) {
			s.order = append(s.order, dim)
		}
	} else {
		delete(s.values, dim)
		delete(s.locked, dim)
		s.order = lo.Without(s.order, dim)
	}
	s.touch(dim)
	s.pending = true
}

// dropFrom clears and unlocks every dimension at or after position i of
// the order. Option lists stay until the next fetch.
func (s *Session) dropFrom(i int) {
	if i >= len(s.order) {
		return
	}
	for _, d := range s.order[i:] {
		delete(s.values, d)
		delete(s.locked, d)
	}
	s.order = s.order[:i]
}

func (s *Session) touch(dim model.Dimension) {
	if !lo.Contains(s.touched, dim) {
		s.touched = append(s.touched, dim)
	}
	if s.fixedRanking {
		s.ranking = s.ordering.Rank(s.touched)
	}
}

// SelectByName resolves text against dim's rendered options (by id,
// display name or slug, falling back to the name cache) and applies it as
// a user change. An empty text clears dim.
func (s *Session) SelectByName(ctx context.Context, dim model.Dimension, text string) error {
	if !s.ordering.Contains(dim) {
		return fmt.Errorf("%s: %w", dim, ErrUnknownDimension)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.UserChange(dim, 0)
		return nil
	}
	if id, ok := s.match(ctx, dim, text); ok {
		s.UserChange(dim, id)
		return nil
	}
	return fmt.Errorf("%s %q: %w", dim, text, ErrUnknownOption)
}

func (s *Session) match(ctx context.Context, dim model.Dimension, text string) (int64, bool) {
	lower := strings.ToLower(text)
	slug := urlsync.Slugify(text)
	for _, o := range s.options[dim] {
		if strconv.FormatInt(o.ID, 10) == text || strings.ToLower(o.Name) == lower || urlsync.Slugify(o.Name) == slug {
			return o.ID, true
		}
	}
	return s.names.Resolve(ctx, dim, text)
}

// displayName returns the rendered name of dim's current value.
func (s *Session) displayName(ctx context.Context, dim model.Dimension) string {
	id := s.values[dim]
	if id == 0 {
		return ""
	}
	if o, ok := lo.Find(s.options[dim], func(o model.Option) bool { return o.ID == id }); ok {
		return o.Name
	}
	if l, ok := s.names.Label(ctx, dim, id); ok {
		return l
	}
	return strconv.FormatInt(id, 10)
}

// query builds the request body from the given prefix of the order.
func (s *Session) query(dims []model.Dimension) model.FilterQuery {
	q := model.FilterQuery{CategoryID: s.category.ID, Values: map[model.Dimension]int64{}}
	for _, d := range dims {
		if v := s.values[d]; v != 0 {
			q.Values[d] = v
		}
	}
	return q
}
