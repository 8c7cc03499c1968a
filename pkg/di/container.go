package di

import (
	"context"
	"os"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-document-cache/cache"
	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/pkg/config"
	"github.com/goliatone/go-document-cache/pkg/health"
	"github.com/goliatone/go-document-cache/pkg/logging"
	"github.com/goliatone/go-document-cache/repositorycache"
	"github.com/goliatone/go-document-cache/store"
	"github.com/goliatone/go-document-cache/store/memstore"
	"github.com/goliatone/go-document-cache/store/mongostore"
	"github.com/goliatone/go-document-cache/store/sqlstore"
)

// Container wires the document gateway, the read cache and the cached
// repository from a single configuration. It owns the store connection.
type Container struct {
	config        config.Config
	logger        *logging.Logger
	gateway       *store.Gateway
	cacheService  cache.Service[[]document.Document]
	keySerializer cache.KeySerializer
	repository    *repositorycache.CachedRepository
	health        *health.Checker
}

// NewContainer validates cfg, opens the configured store and builds the
// cached repository on top of it.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	coll, err := OpenCollection(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	c, err := NewContainerWithCollection(cfg, coll)
	if err != nil {
		_ = coll.Close(ctx)
		return nil, err
	}
	return c, nil
}

// NewContainerWithCollection builds the container around an already opened
// collection. cfg.Store is only used for logging.
func NewContainerWithCollection(cfg config.Config, coll store.Collection) (*Container, error) {
	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	cacheService, err := cache.NewService[[]document.Document](cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	gateway := store.New(coll, store.WithLogger(logger))
	keySerializer := cache.NewDefaultKeySerializer()

	checker, err := health.NewChecker(gateway, cfg.Health, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("container ready",
		"store", cfg.Store.String(),
		"cache_capacity", cfg.Cache.Capacity,
		"health_ttl", cfg.Health.TTL,
	)

	return &Container{
		config:        cfg,
		logger:        logger,
		gateway:       gateway,
		cacheService:  cacheService,
		keySerializer: keySerializer,
		repository:    repositorycache.New(gateway, cacheService, keySerializer),
		health:        checker,
	}, nil
}

// OpenCollection opens the collection selected by cfg.Driver.
func OpenCollection(ctx context.Context, cfg config.StoreConfig) (store.Collection, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memstore.New(cfg.Collection), nil
	case config.DriverSQLite, config.DriverPostgres:
		coll, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN, cfg.Collection)
		if err != nil {
			return nil, errors.WithContext(
				errors.Wrap(err, errors.CodeDatabase, "failed to open sql store"),
				"driver", cfg.Driver)
		}
		return coll, nil
	case config.DriverMongo:
		coll, err := mongostore.Open(ctx, cfg.MongoConfig())
		if err != nil {
			return nil, errors.WithContext(
				errors.Wrap(err, errors.CodeDatabase, "failed to open mongodb store"),
				"store", cfg.String())
		}
		return coll, nil
	default:
		return nil, errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "unknown store driver"),
			"driver", cfg.Driver)
	}
}

// Repository returns the cached repository.
func (c *Container) Repository() *repositorycache.CachedRepository {
	return c.repository
}

// Gateway returns the uncached document gateway.
func (c *Container) Gateway() *store.Gateway {
	return c.gateway
}

// CacheService returns the read cache shared by the repository.
func (c *Container) CacheService() cache.Service[[]document.Document] {
	return c.cacheService
}

// KeySerializer returns the serializer used for cache keys.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Health returns the store health checker.
func (c *Container) Health() *health.Checker {
	return c.health
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

// Logger returns the shared logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Close releases the store connection.
func (c *Container) Close(ctx context.Context) error {
	return c.gateway.Close(ctx)
}
