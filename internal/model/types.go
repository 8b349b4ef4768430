// Package model defines the canonical data types used throughout pitwall.
// These types are the single source of truth for catalog entities, filter
// dimensions and the result envelope that every command returns.
package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter Dimensions ────────────────────────────────────────────────────────

// Dimension names one filterable axis of the setup catalog.
type Dimension string

const (
	DimClass     Dimension = "class"
	DimCar       Dimension = "car"
	DimTrack     Dimension = "track"
	DimSeason    Dimension = "season"
	DimWeek      Dimension = "week"
	DimVariation Dimension = "variation"
	DimSeries    Dimension = "series"
	DimYear      Dimension = "year"
	DimVersion   Dimension = "version"
)

// AllDimensions lists every known dimension. The order carries no cascade
// meaning; see package filters for that.
var AllDimensions = []Dimension{
	DimClass, DimCar, DimTrack, DimSeason, DimWeek,
	DimVariation, DimSeries, DimYear, DimVersion,
}

// ParseDimension matches s case-insensitively against the known dimensions.
func ParseDimension(s string) (Dimension, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllDimensions {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// BareInteger reports whether the API may return this dimension's options
// as a plain list of integers instead of {id,name} objects.
func (d Dimension) BareInteger() bool {
	return d == DimWeek || d == DimYear
}

// RequestField is the request body key used for this dimension when
// talking to the cascading-filter and search endpoints.
func (d Dimension) RequestField() string {
	if d.BareInteger() {
		return string(d)
	}
	return string(d) + "_id"
}

// Option is one selectable value of a dimension.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FilterOptions holds the option lists returned by one cascading fetch.
// Present records which dimensions appeared in the response at all.
type FilterOptions struct {
	Lists   map[Dimension][]Option `json:"lists"`
	Present map[Dimension]bool     `json:"-"`
}

// FilterQuery is the request body shared by the cascading-filter and
// search endpoints.
type FilterQuery struct {
	CategoryID int
	Values     map[Dimension]int64
}

// Body renders the query as the JSON object the API expects.
func (q FilterQuery) Body() map[string]any {
	body := map[string]any{"category_id": q.CategoryID}
	for d, v := range q.Values {
		if v != 0 {
			body[d.RequestField()] = v
		}
	}
	return body
}

// NameEntry is the persisted name-resolution state for one dimension.
// Names maps normalised display names to ids; Labels keeps the original
// display label for each id.
type NameEntry struct {
	Names  map[string]int64  `json:"names"`
	Labels map[string]string `json:"labels,omitempty"`
}

// NewNameEntry returns an empty, writable entry.
func NewNameEntry() NameEntry {
	return NameEntry{Names: map[string]int64{}, Labels: map[string]string{}}
}

// Label returns the stored display label for id.
func (e NameEntry) Label(id int64) (string, bool) {
	l, ok := e.Labels[strconv.FormatInt(id, 10)]
	return l, ok
}

// ─── Catalog Entity Types ────────────────────────────────────────────────────

// Category is a catalog category (a game).
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Plan is a subscription plan as listed by the API.
type Plan struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
	Interval string          `json:"interval,omitempty"`
}

// Setup is a single search result. Only ID and LapTimeMS are interpreted;
// Raw carries the API object untouched.
type Setup struct {
	ID        int64
	LapTimeMS float64 // +Inf when absent or unparseable
	Raw       map[string]any
}

// HasLapTime reports whether a usable lap time was found.
func (s Setup) HasLapTime() bool {
	return !math.IsInf(s.LapTimeMS, 1)
}

// Field returns a string-valued field from the raw object, or "".
func (s Setup) Field(keys ...string) string {
	for _, k := range keys {
		switch v := s.Raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if n, ok := v["name"].(string); ok && n != "" {
				return n
			}
		}
	}
	return ""
}

// MarshalJSON passes the raw API object through.
func (s Setup) MarshalJSON() ([]byte, error) {
	if s.Raw == nil {
		return json.Marshal(map[string]any{"id": s.ID})
	}
	return json.Marshal(s.Raw)
}

// Token is a persisted API session.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries performance metadata for a command result.
type ResultStats struct {
	CacheHit   bool  `json:"cache_hit"`
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindCategory  = "category"
	KindPlan      = "plan"
	KindOptions   = "options"
	KindSetupPage = "setup_page"
	KindTable     = "table"
)

// Table is a generic header-plus-rows payload for KindTable results.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// DimensionOptions is the rendered option list for one dimension.
type DimensionOptions struct {
	Dimension Dimension `json:"dimension"`
	Selected  int64     `json:"selected,omitempty"`
	Locked    bool      `json:"locked,omitempty"`
	Options   []Option  `json:"options"`
}

// SetupPage is one page of sorted search results plus the browse state
// that produced it.
type SetupPage struct {
	Category   string              `json:"category"`
	Location   string              `json:"location"`
	Selection  map[Dimension]int64 `json:"selection"`
	Order      []Dimension         `json:"order"`
	Searched   bool                `json:"searched"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
	Total      int                 `json:"total"`
	Items      []Setup             `json:"items"`
	Selected   *Setup              `json:"selected"`
	Filters    []DimensionOptions  `json:"filters,omitempty"`

	// FixedRanking is set while the selection order came from a deep link.
	FixedRanking bool        `json:"fixed_ranking"`
	Ranking      []Dimension `json:"ranking,omitempty"`
	Fetches      int         `json:"fetches"`
}
