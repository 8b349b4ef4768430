package api

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/ohler55/ojg/jp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/util"
)

// optionAliases lists the response keys a dimension's option list may
// appear under, in order of preference.
var optionAliases = map[model.Dimension][]string{
	model.DimClass:     {"classes", "class"},
	model.DimCar:       {"cars", "car"},
	model.DimTrack:     {"tracks", "track"},
	model.DimSeason:    {"seasons", "season"},
	model.DimWeek:      {"weeks", "week"},
	model.DimVariation: {"variations", "track_variations", "track_variation"},
	model.DimSeries:    {"serieses", "series"},
	model.DimYear:      {"years", "year"},
	model.DimVersion:   {"versions", "version"},
}

// ─── Categories ──────────────────────────────────────────────────────────────

// ListCategories returns every catalog category.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	data, err := c.get(ctx, pathCategories, false)
	if err != nil {
		return nil, err
	}
	list, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("categories: expected list, got %T", data)
	}
	out := make([]model.Category, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := toInt64(m["id"])
		if !ok {
			continue
		}
		out = append(out, model.Category{
			ID:   int(id),
			Name: stringOf(m, "name", "title"),
			Slug: stringOf(m, "slug"),
		})
	}
	return out, nil
}

// ─── Cascading Filters ───────────────────────────────────────────────────────

// CascadingFilters asks the API for the option lists compatible with q.
// Dimensions missing from the response are absent from Present.
func (c *Client) CascadingFilters(ctx context.Context, q model.FilterQuery) (*model.FilterOptions, error) {
	data, err := c.post(ctx, pathCascading, q.Body(), true)
	if err != nil {
		return nil, err
	}
	if _, ok := data.(map[string]any); !ok {
		return nil, fmt.Errorf("cascading filters: expected object, got %T", data)
	}
	return parseFilterOptions(data), nil
}

func parseFilterOptions(data any) *model.FilterOptions {
	out := &model.FilterOptions{
		Lists:   map[model.Dimension][]model.Option{},
		Present: map[model.Dimension]bool{},
	}
	for _, dim := range model.AllDimensions {
		for _, alias := range optionAliases[dim] {
			node := jp.C(alias).First(data)
			list, ok := node.([]any)
			if !ok {
				continue
			}
			out.Lists[dim] = parseOptions(dim, list)
			out.Present[dim] = true
			break
		}
	}
	return out
}

func parseOptions(dim model.Dimension, list []any) []model.Option {
	opts := make([]model.Option, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			id, ok := toInt64(m["id"])
			if !ok {
				continue
			}
			name := stringOf(m, "name", "label", "variation")
			if name == "" {
				name = strconv.FormatInt(id, 10)
			}
			opts = append(opts, model.Option{ID: id, Name: name})
			continue
		}
		if !dim.BareInteger() {
			continue
		}
		if id, ok := toInt64(item); ok {
			opts = append(opts, model.Option{ID: id, Name: strconv.FormatInt(id, 10)})
		}
	}
	return opts
}

// ─── Search ──────────────────────────────────────────────────────────────────

// SearchSetups runs a setup search. Results come back in API order; the
// caller sorts them.
func (c *Client) SearchSetups(ctx context.Context, q model.FilterQuery) ([]model.Setup, error) {
	data, err := c.post(ctx, pathSearch, q.Body(), true)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []model.Setup{}, nil
	}
	list, ok := data.([]any)
	if !ok {
		if m, isObj := data.(map[string]any); isObj {
			list, ok = m["results"].([]any)
		}
	}
	if !ok {
		return nil, fmt.Errorf("search: expected list, got %T", data)
	}
	out := make([]model.Setup, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			c.log.Debug("skipping non-object search result", zap.Any("item", item))
			continue
		}
		out = append(out, SetupFromObject(m))
	}
	return out, nil
}

// SetupFromObject interprets one decoded search result object.
func SetupFromObject(m map[string]any) model.Setup {
	id, _ := toInt64(m["id"])
	return model.Setup{ID: id, LapTimeMS: lapTimeOf(m), Raw: m}
}

// lapTimeOf prefers a numeric lap_time_ms and falls back to lap_time given
// either as milliseconds or as "M:SS(.mmm)".
func lapTimeOf(m map[string]any) float64 {
	switch v := m["lap_time_ms"].(type) {
	case int64, float64, int:
		if ms := util.LapTimeValue(v); !math.IsInf(ms, 1) {
			return ms
		}
	}
	return util.LapTimeValue(m["lap_time"])
}

// ─── Plans ───────────────────────────────────────────────────────────────────

// ListPlans returns the subscription plans on offer.
func (c *Client) ListPlans(ctx context.Context) ([]model.Plan, error) {
	data, err := c.get(ctx, pathPlans, false)
	if err != nil {
		return nil, err
	}
	list, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("plans: expected list, got %T", data)
	}
	out := make([]model.Plan, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := toInt64(m["id"])
		out = append(out, model.Plan{
			ID:       int(id),
			Name:     stringOf(m, "name", "title"),
			Price:    priceOf(m["price"]),
			Currency: stringOf(m, "currency"),
			Interval: stringOf(m, "interval", "billing_period"),
		})
	}
	return out, nil
}

func priceOf(v any) decimal.Decimal {
	switch p := v.(type) {
	case int64:
		return decimal.NewFromInt(p)
	case float64:
		return decimal.NewFromFloat(p)
	case string:
		if d, err := decimal.NewFromString(p); err == nil {
			return d
		}
	}
	return decimal.Zero
}
