package browse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// ErrUnknownCategory is returned when a key matches no catalog category.
var ErrUnknownCategory = errors.New("unknown category")

// MatchCategory picks the category matching key by slug, slugified name
// or numeric id. Categories without a slug get their slugified name.
func MatchCategory(cats []model.Category, key string) (model.Category, error) {
	want := urlsync.Slugify(key)
	id, idErr := strconv.Atoi(strings.TrimSpace(key))
	for _, c := range cats {
		if c.Slug == "" {
			c.Slug = urlsync.Slugify(c.Name)
		}
		if strings.EqualFold(c.Slug, want) || urlsync.Slugify(c.Name) == want || (idErr == nil && c.ID == id) {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}
