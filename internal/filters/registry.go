// Package filters holds the fixed cascade orderings of filter dimensions
// for each kind of catalog category.
package filters

import (
	"strings"

	"github.com/samber/lo"

	"github.com/derickschaefer/pitwall/internal/model"
)

// Ordering is the fixed cascade order of the dimensions active for a
// category. Earlier dimensions are more significant.
type Ordering []model.Dimension

// richOrdering applies to categories with the full season/week structure.
var richOrdering = Ordering{
	model.DimClass,
	model.DimCar,
	model.DimTrack,
	model.DimSeries,
	model.DimYear,
	model.DimSeason,
	model.DimWeek,
	model.DimVariation,
}

var simpleOrdering = Ordering{
	model.DimClass,
	model.DimCar,
	model.DimTrack,
	model.DimVersion,
}

// richCategories are the category slugs that use richOrdering.
var richCategories = map[string]bool{
	"iracing": true,
}

// IsRich reports whether the category slug uses the rich ordering.
func IsRich(categorySlug string) bool {
	return richCategories[strings.ToLower(strings.TrimSpace(categorySlug))]
}

// ForCategory returns a copy of the ordering for the category slug.
func ForCategory(categorySlug string) Ordering {
	if IsRich(categorySlug) {
		return append(Ordering(nil), richOrdering...)
	}
	return append(Ordering(nil), simpleOrdering...)
}

// Index returns the position of d in the ordering, or -1.
func (o Ordering) Index(d model.Dimension) int {
	return lo.IndexOf(o, d)
}

// Contains reports whether d is active in the ordering.
func (o Ordering) Contains(d model.Dimension) bool {
	return o.Index(d) >= 0
}

// Top returns the most significant dimension.
func (o Ordering) Top() model.Dimension {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}

// Rank sorts dims by their position in the ordering. Dimensions that are
// not part of the ordering keep their relative order and go last.
func (o Ordering) Rank(dims []model.Dimension) []model.Dimension {
	known, extra := lo.FilterReject(dims, func(d model.Dimension, _ int) bool {
		return o.Contains(d)
	})
	ranked := make([]model.Dimension, 0, len(dims))
	for _, d := range o {
		if lo.Contains(known, d) {
			ranked = append(ranked, d)
		}
	}
	return append(ranked, lo.Uniq(extra)...)
}
