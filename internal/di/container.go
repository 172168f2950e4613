package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/cascade"
	"github.com/goliatone/go-translatable/internal/completeness"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/logging/console"
	"github.com/goliatone/go-translatable/internal/logging/gologger"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/resolver"
	"github.com/goliatone/go-translatable/internal/runtimeconfig"
	"github.com/goliatone/go-translatable/internal/storage"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Container wires module dependencies. Without a database it falls back to
// the in-memory repositories.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	locale   locale.Context
	registry *registry.Registry

	entryRepo  translations.Repository
	recordRepo records.Repository

	translationSvc translations.Service
	recordSvc      records.Service
	evaluator      *completeness.Evaluator
	resolver       *resolver.Resolver
	cascade        *cascade.Cache
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB binds an existing database. The container migrates it but does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service used by the Bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRegistry supplies a pre-populated registry. Declarations from the
// configured file are still loaded into it.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithEntryRepository overrides the translation entry repository.
func WithEntryRepository(repo translations.Repository) Option {
	return func(c *Container) {
		c.entryRepo = repo
	}
}

// WithRecordRepository overrides the record repository.
func WithRecordRepository(repo records.Repository) Option {
	return func(c *Container) {
		c.recordRepo = repo
	}
}

// NewContainer validates cfg and assembles every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lc, err := locale.New(cfg.Locales.Current, cfg.Locales.Active...)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Cache.TTL,
		locale:   lc,
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Minute
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if err := c.configureRegistry(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureCacheDefaults(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureRepositories()
	c.configureServices()

	c.logger.Info("container.configured",
		"storage", c.Config.StorageProvider(),
		"cache", c.cacheService != nil,
		"types", len(c.registry.Types()),
	)
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider == nil {
		logCfg := c.Config.Logging
		switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     logCfg.Level,
				Format:    logCfg.Format,
				AddSource: logCfg.AddSource,
				Focus:     logCfg.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		default:
			c.loggerProvider = console.NewProvider(console.Options{
				MinLevel: console.ParseLevel(logCfg.Level),
			})
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "translatable")
	return nil
}

func (c *Container) configureRegistry() error {
	if c.registry == nil {
		c.registry = registry.New()
	}
	path := strings.TrimSpace(c.Config.DeclarationsPath)
	if path == "" {
		return nil
	}
	loaded, err := c.registry.LoadFile(path)
	if err != nil {
		return fmt.Errorf("di: load declarations: %w", err)
	}
	logging.RegistryLogger(c.loggerProvider).Info("registry.declarations_loaded", "path", path, "types", loaded)
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB == nil {
		switch c.Config.StorageProvider() {
		case runtimeconfig.StorageSQLite, runtimeconfig.StoragePostgres:
			db, err := storage.Open(storage.Config{
				Driver: c.Config.StorageProvider(),
				DSN:    c.Config.Storage.DSN,
			})
			if err != nil {
				return err
			}
			c.bunDB = db
			c.ownsDB = true
		default:
			return nil
		}
	}

	if err := storage.Migrate(context.Background(), c.bunDB, records.CreateSchema, translations.CreateSchema); err != nil {
		c.Close()
		return fmt.Errorf("di: migrate: %w", err)
	}
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.cacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.entryRepo == nil {
			c.entryRepo = translations.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.recordRepo == nil {
			c.recordRepo = records.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		return
	}
	if c.entryRepo == nil {
		c.entryRepo = translations.NewMemoryRepository()
	}
	if c.recordRepo == nil {
		c.recordRepo = records.NewMemoryRepository()
	}
}

func (c *Container) configureServices() {
	c.translationSvc = translations.NewService(c.entryRepo,
		translations.WithRegistry(c.registry),
		translations.WithLogger(logging.TranslationsLogger(c.loggerProvider)),
	)
	c.recordSvc = records.NewService(c.recordRepo, c.entryRepo,
		records.WithRegistry(c.registry),
		records.WithTxRunner(c.txRunner()),
		records.WithLogger(logging.RecordsLogger(c.loggerProvider)),
	)
	c.evaluator = completeness.NewEvaluator(c.registry, c.recordRepo, c.entryRepo,
		completeness.WithLogger(logging.CompletenessLogger(c.loggerProvider)),
	)
	c.resolver = resolver.New(c.registry, c.recordSvc)
	c.cascade = cascade.New(c.registry, c.recordRepo, c.evaluator,
		cascade.WithLogger(logging.CascadeLogger(c.loggerProvider)),
	)
}

// txRunner returns a transaction runner when both stores are Bun backed.
// Other stores fall back to compensating writes.
func (c *Container) txRunner() records.TxRunner {
	if c.bunDB == nil {
		return nil
	}
	recordRepo, ok := c.recordRepo.(*records.BunRepository)
	if !ok {
		return nil
	}
	entryRepo, ok := c.entryRepo.(*translations.BunRepository)
	if !ok {
		return nil
	}
	return records.NewBunTxRunner(c.bunDB, recordRepo, entryRepo)
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// LoggerProvider returns the provider module loggers are drawn from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Locale returns the locale context built from the configuration.
func (c *Container) Locale() locale.Context {
	return c.locale
}

func (c *Container) Registry() *registry.Registry {
	return c.registry
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) EntryRepository() translations.Repository {
	return c.entryRepo
}

func (c *Container) RecordRepository() records.Repository {
	return c.recordRepo
}

func (c *Container) TranslationService() translations.Service {
	return c.translationSvc
}

func (c *Container) RecordService() records.Service {
	return c.recordSvc
}

func (c *Container) Evaluator() *completeness.Evaluator {
	return c.evaluator
}

func (c *Container) Resolver() *resolver.Resolver {
	return c.resolver
}

func (c *Container) Cascade() *cascade.Cache {
	return c.cascade
}
