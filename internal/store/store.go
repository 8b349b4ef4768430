// Package store provides a thin bbolt wrapper for pitwall's local data store.
//
// The store holds what must outlive a single browse session: the
// name-resolution cache that maps URL slugs back to catalog ids, saved
// deep links, and the API session token. Name entries only ever grow;
// they are removed by an explicit cache clear.
//
// Buckets:
//
//	names   one key per filter dimension, JSON model.NameEntry
//	saved   named deep links for reproducible searches
//	auth    the current API token pair
//	_meta   internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/derickschaefer/pitwall/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Bucket name constants.
var (
	bucketNames    = []byte("names")
	bucketSaved    = []byte("saved")
	bucketAuth     = []byte("auth")
	bucketInternal = []byte("_meta")
)

// AllBuckets lists every top-level bucket for stats and clear operations.
var AllBuckets = []string{"names", "saved", "auth"}

var tokenKey = []byte("token")

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketNames, bucketSaved, bucketAuth, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Name Resolution ──────────────────────────────────────────────────────────

func decodeNameEntry(v []byte) (model.NameEntry, error) {
	e := model.NewNameEntry()
	if v == nil {
		return e, nil
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, err
	}
	if e.Names == nil {
		e.Names = map[string]int64{}
	}
	if e.Labels == nil {
		e.Labels = map[string]string{}
	}
	return e, nil
}

// LoadNames returns the stored name entry for a dimension.
// A dimension that was never stored yields an empty entry.
func (s *Store) LoadNames(dim string) (model.NameEntry, error) {
	var e model.NameEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		e, err = decodeNameEntry(tx.Bucket(bucketNames).Get([]byte(dim)))
		return err
	})
	if err != nil {
		return model.NewNameEntry(), fmt.Errorf("reading names %s: %w", dim, err)
	}
	return e, nil
}

// MergeNames upserts the given names and labels into the stored entry for
// dim. Existing keys not present in add are kept.
func (s *Store) MergeNames(dim string, add model.NameEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNames)
		cur, err := decodeNameEntry(b.Get([]byte(dim)))
		if err != nil {
			// A corrupt entry is replaced rather than blocking every write.
			cur = model.NewNameEntry()
		}
		for k, v := range add.Names {
			cur.Names[k] = v
		}
		for k, v := range add.Labels {
			cur.Labels[k] = v
		}
		data, err := json.Marshal(cur)
		if err != nil {
			return fmt.Errorf("encoding names %s: %w", dim, err)
		}
		return b.Put([]byte(dim), data)
	})
}

// ListNameDimensions returns the dimensions that have stored names, sorted.
func (s *Store) ListNameDimensions() ([]string, error) {
	var dims []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNames).ForEach(func(k, _ []byte) error {
			dims = append(dims, string(k))
			return nil
		})
	})
	sort.Strings(dims)
	return dims, err
}

// ─── Saved Searches ───────────────────────────────────────────────────────────

// SavedSearch is a named deep link that can be replayed later.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// PutSaved stores a saved search. The key is saved:<ID>.
func (s *Store) PutSaved(ss SavedSearch) error {
	b, err := json.Marshal(ss)
	if err != nil {
		return fmt.Errorf("encoding saved search: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSaved).Put([]byte("saved:"+ss.ID), b)
	})
}

// GetSaved retrieves a saved search by ID.
// Returns (ss, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) GetSaved(id string) (SavedSearch, bool, error) {
	var ss SavedSearch
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSaved).Get([]byte("saved:" + id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &ss)
	})
	if err != nil {
		return ss, false, err
	}
	return ss, ss.ID != "", nil
}

// ListSaved returns all saved searches, oldest first.
func (s *Store) ListSaved() ([]SavedSearch, error) {
	var out []SavedSearch
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSaved).ForEach(func(k, v []byte) error {
			var ss SavedSearch
			if err := json.Unmarshal(v, &ss); err != nil {
				return err
			}
			out = append(out, ss)
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

// DeleteSaved removes a saved search by ID.
func (s *Store) DeleteSaved(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSaved).Delete([]byte("saved:" + id))
	})
}

// ─── Auth Token ───────────────────────────────────────────────────────────────

// PutToken persists the API token pair.
func (s *Store) PutToken(t model.Token) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Put(tokenKey, b)
	})
}

// GetToken returns the stored token pair, if any.
func (s *Store) GetToken() (model.Token, bool, error) {
	var t model.Token
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketAuth).Get(tokenKey)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &t)
	})
	if err != nil {
		return t, false, err
	}
	return t, t.AccessToken != "", nil
}

// DeleteToken forgets the stored token pair.
func (s *Store) DeleteToken() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Delete(tokenKey)
	})
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all buckets.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			var count int
			var bytes int64
			b.ForEach(func(k, v []byte) error {
				count++
				bytes += int64(len(k) + len(v))
				return nil
			})
			stats = append(stats, BucketStats{Name: name, Count: count, Bytes: bytes})
		}
		return nil
	})
	return stats, err
}

// ClearBucket deletes all entries in the named bucket.
func (s *Store) ClearBucket(name string) error {
	known := false
	for _, b := range AllBuckets {
		if b == name {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown bucket %q", name)
	}
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}
