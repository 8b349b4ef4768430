// Package app wires together configuration, the API client, the local
// store and the name cache into a single Deps struct that commands and
// the HTTP front-end receive at runtime.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/api"
	"github.com/derickschaefer/pitwall/internal/browse"
	"github.com/derickschaefer/pitwall/internal/config"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/namecache"
	"github.com/derickschaefer/pitwall/internal/store"
	"github.com/derickschaefer/pitwall/internal/urlsync"
	"github.com/derickschaefer/pitwall/internal/util"
)

// Deps holds all runtime dependencies injected into command Run functions.
// Store and Names are nil until RequireStore succeeds.
type Deps struct {
	Config *config.Config
	Client *api.Client
	Log    *zap.Logger
	Store  *store.Store
	Names  *namecache.Cache

	redis *namecache.RedisBackend
}

// New builds a Deps from resolved config.
func New(cfg *config.Config, log *zap.Logger) *Deps {
	if log == nil {
		log = zap.NewNop()
	}
	client := api.NewClient(cfg.BaseURL, cfg.Timeout, cfg.Rate, log.Named("api"))
	return &Deps{
		Config: cfg,
		Client: client,
		Log:    log,
	}
}

// RequireStore opens the local store, attaches the persisted session to
// the API client and builds the name cache on the configured backend.
// Safe to call more than once.
func (d *Deps) RequireStore(ctx context.Context) error {
	if d.Store != nil {
		return nil
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	d.Store = s

	if tok, ok, err := s.GetToken(); err != nil {
		d.Log.Warn("reading stored session", zap.Error(err))
	} else if ok {
		d.Client.SetTokenSource(api.SessionTokens(d.Client, tok, s.PutToken))
	}

	var backend namecache.Backend = namecache.BoltBackend{Store: s}
	if d.Config.CacheBackend == config.BackendRedis {
		rb, err := namecache.NewRedisBackend(ctx, d.Config.RedisAddr, d.Config.RedisPassword, d.Config.RedisDB)
		if err != nil {
			return fmt.Errorf("connecting to redis name cache: %w", err)
		}
		d.redis = rb
		backend = rb
	}
	d.Names = namecache.New(backend, d.Log.Named("names"))
	return nil
}

// Redis returns the redis name-cache backend, or nil when the bolt
// backend is in use.
func (d *Deps) Redis() *namecache.RedisBackend {
	return d.redis
}

// Close releases the store and any redis connection.
func (d *Deps) Close() error {
	var errs util.MultiError
	if d.redis != nil {
		errs.Add(d.redis.Close())
	}
	if d.Store != nil {
		errs.Add(d.Store.Close())
	}
	_ = d.Log.Sync()
	return errs.Err()
}

// FindCategory looks a category up by slug, name or numeric id.
func (d *Deps) FindCategory(ctx context.Context, key string) (model.Category, error) {
	cats, err := d.Client.ListCategories(ctx)
	if err != nil {
		return model.Category{}, fmt.Errorf("listing categories: %w", err)
	}
	return browse.MatchCategory(cats, key)
}

// NewSession starts a browse session for cat. RequireStore must have
// succeeded.
func (d *Deps) NewSession(cat model.Category) *browse.Session {
	return browse.New(cat, d.Client, d.Names, browse.Config{
		PageSize: d.Config.PageSize,
		Logger:   d.Log.Named("browse"),
	})
}

// OpenLocation resolves the category of a deep link and runs the
// navigation on a fresh session.
func (d *Deps) OpenLocation(ctx context.Context, loc urlsync.Location) (*browse.Session, error) {
	cat, err := d.FindCategory(ctx, loc.Category)
	if err != nil {
		return nil, err
	}
	s := d.NewSession(cat)
	s.Open(ctx, loc)
	return s, nil
}
