package main

import (
	"fmt"

	"github.com/pders01/popcorn/internal/browse"
	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/debuglog"
	"github.com/pders01/popcorn/internal/search"
	"github.com/pders01/popcorn/internal/storage"
	"github.com/pders01/popcorn/internal/validation"
	"github.com/pders01/popcorn/internal/watched"
)

// env is everything a command needs, opened in dependency order.
type env struct {
	cfg      *config.Config
	store    *storage.Store
	manager  *watched.Manager
	searcher search.Searcher
	session  *browse.Session

	closers []func() error
}

func (e *env) Close() {
	if e.session != nil {
		e.session.Shutdown()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			debuglog.Warnf("shutdown: %v", err)
		}
	}
	_ = debuglog.Close()
}

// loadConfig reads the config and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// Paths from --db are the user's explicit choice; config paths stay
	// inside the popcorn directories.
	paths := validation.NewSecurePathHandler()
	if dbPath != "" {
		paths = validation.NewPermissivePathHandler()
		cfg.Database.Path = dbPath
		// Keep a separate index per database.
		cfg.Database.SearchIndex = dbPath + ".bleve"
	}
	if cfg.Database.Path, err = paths.GetSecureDBPath(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	if cfg.Database.SearchIndex != "" {
		if cfg.Database.SearchIndex, err = paths.GetSecureIndexPath(cfg.Database.SearchIndex); err != nil {
			return nil, fmt.Errorf("search index path: %w", err)
		}
	}

	validator := validation.NewCatalogURLValidator()
	if insecureCatalog {
		validator = validation.NewPermissiveCatalogURLValidator()
	}
	if cfg.Catalog.BaseURL, err = validator.ValidateAndNormalize(cfg.Catalog.BaseURL); err != nil {
		return nil, fmt.Errorf("catalog base url: %w", err)
	}
	if cfg.Catalog.APIKey == "" {
		return nil, fmt.Errorf("no catalog API key: set OMDB_API_KEY or catalog.api_key in the config file")
	}

	return cfg, nil
}

func setup() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := debuglog.SetupWithOptions(debuglog.ParseLogLevel(cfg.Log.Level), debuglog.Options{
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		return nil, fmt.Errorf("setting up log: %w", err)
	}

	e := &env{cfg: cfg}

	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}
	e.store = store
	e.closers = append(e.closers, store.Close)

	e.manager = watched.NewManager(store)
	e.searcher = openSearcher(e, cfg.Database.SearchIndex, e.manager.Entries())
	if l, ok := e.searcher.(search.UpdateListener); ok {
		e.manager.OnChange(l.OnWatchedChanged)
	}

	client := catalog.NewCachedClient(catalog.NewClient(cfg.Catalog), cfg.Catalog.DetailCacheTTL)
	e.session = browse.NewSession(client, e.manager, cfg)

	debuglog.Infof("popcorn %s started (db %s)", Version, cfg.Database.Path)
	return e, nil
}

// openSearcher prefers the bleve index and falls back to in-memory scoring
// when the index cannot be opened, e.g. because another process holds it.
func openSearcher(e *env, indexPath string, entries []storage.WatchedEntry) search.Searcher {
	be, err := search.NewBleveEngine(indexPath, entries)
	if err != nil {
		debuglog.Warnf("bleve index unavailable, using in-memory search: %v", err)
		return search.NewEngine(entries)
	}
	e.closers = append(e.closers, be.Close)
	return be
}
