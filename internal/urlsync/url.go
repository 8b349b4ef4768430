// Package urlsync translates between browse selections and the deep-link
// URL surface /<base>/<category>[/<car>[/<track>]]?<dimension>=<name>.
package urlsync

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/derickschaefer/pitwall/internal/model"
)

// DefaultBase is the first path segment of every setups URL.
const DefaultBase = "setups"

// ErrNotSetupsURL is returned when a path does not start with the base
// segment followed by a category.
var ErrNotSetupsURL = errors.New("not a setups URL")

// queryParams is the query-string half of a setups URL. Car and track
// normally travel in the path; they appear here only when the path lacks
// them.
type queryParams struct {
	Class     string `schema:"class,omitempty"`
	Car       string `schema:"car,omitempty"`
	Track     string `schema:"track,omitempty"`
	Season    string `schema:"season,omitempty"`
	Week      string `schema:"week,omitempty"`
	Variation string `schema:"variation,omitempty"`
	Series    string `schema:"series,omitempty"`
	Year      string `schema:"year,omitempty"`
	Version   string `schema:"version,omitempty"`
}

func (q *queryParams) field(d model.Dimension) *string {
	switch d {
	case model.DimClass:
		return &q.Class
	case model.DimCar:
		return &q.Car
	case model.DimTrack:
		return &q.Track
	case model.DimSeason:
		return &q.Season
	case model.DimWeek:
		return &q.Week
	case model.DimVariation:
		return &q.Variation
	case model.DimSeries:
		return &q.Series
	case model.DimYear:
		return &q.Year
	case model.DimVersion:
		return &q.Version
	}
	return nil
}

var (
	decoder = newDecoder()
	encoder = schema.NewEncoder()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Location is a parsed setups URL.
type Location struct {
	Base     string
	Category string
	// URI is the path and query as given.
	URI string
	// Desired maps each dimension named by the URL to its display text:
	// a slug for path segments, a display name for query values.
	Desired map[model.Dimension]string
}

// Parse reads a setups URL (absolute or path-only). Path segments after
// the category are car then track; query keys are matched to dimension
// names case-insensitively. Path values win over query values.
func Parse(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("parsing %q: %w", raw, err)
	}
	segs := splitPath(u.Path)
	if len(segs) < 2 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotSetupsURL, raw)
	}
	loc := Location{
		Base:     segs[0],
		Category: strings.ToLower(segs[1]),
		URI:      u.RequestURI(),
		Desired:  map[model.Dimension]string{},
	}

	lowered := url.Values{}
	for k, vs := range u.Query() {
		key := strings.ToLower(strings.TrimSpace(k))
		lowered[key] = append(lowered[key], vs...)
	}
	var q queryParams
	if err := decoder.Decode(&q, lowered); err != nil {
		return Location{}, fmt.Errorf("decoding query of %q: %w", raw, err)
	}
	for _, d := range model.AllDimensions {
		if v := strings.TrimSpace(*q.field(d)); v != "" {
			loc.Desired[d] = v
		}
	}

	if len(segs) > 2 {
		loc.Desired[model.DimCar] = segs[2]
	}
	if len(segs) > 3 {
		loc.Desired[model.DimTrack] = segs[3]
	}
	return loc, nil
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Build renders the outbound URL for a selection. names maps every
// selected dimension to its display name. The car goes into the path with
// the track nested beneath it; without a car the track is a query value.
// A name whose slug is empty stays a query value. Everything else is a
// query value.
func Build(base, categorySlug string, names map[model.Dimension]string) (string, error) {
	if base == "" {
		base = DefaultBase
	}
	path := "/" + base + "/" + Slugify(categorySlug)

	var q queryParams
	for d, name := range names {
		if f := q.field(d); f != nil && name != "" {
			*f = name
		}
	}
	if carSlug := Slugify(names[model.DimCar]); carSlug != "" {
		path += "/" + url.PathEscape(carSlug)
		q.Car = ""
		if trackSlug := Slugify(names[model.DimTrack]); trackSlug != "" {
			path += "/" + url.PathEscape(trackSlug)
			q.Track = ""
		}
	}

	vals := url.Values{}
	if err := encoder.Encode(q, vals); err != nil {
		return "", fmt.Errorf("encoding query: %w", err)
	}
	if len(vals) == 0 {
		return path, nil
	}
	return path + "?" + vals.Encode(), nil
}
