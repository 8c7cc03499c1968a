package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-document-cache/cache"
	"github.com/goliatone/go-document-cache/store/mongostore"
)

// Store drivers.
const (
	DriverMongo    = "mongodb"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCCACHE_"

// Config is the full application configuration.
type Config struct {
	Store StoreConfig  `yaml:"store"`
	Cache cache.Config `yaml:"cache"`
	// Health tunes the expiring cache that holds store ping results.
	Health cache.TTLConfig `yaml:"health"`
	Log    LogConfig       `yaml:"log"`
}

// StoreConfig selects and addresses the document store.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	// URI replaces the MongoDB connection string built from the fields above.
	URI string `yaml:"uri"`
	// DSN is the database/sql data source for sqlite3 and postgres.
	DSN            string        `yaml:"dsn"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration for the animal shelter deployment.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:     DriverMongo,
			Username:   mongostore.DefaultUsername,
			Password:   mongostore.DefaultPassword,
			Host:       mongostore.DefaultHost,
			Port:       mongostore.DefaultPort,
			Database:   mongostore.DefaultDatabase,
			Collection: mongostore.DefaultCollection,
		},
		Cache:  cache.DefaultConfig(),
		Health: cache.DefaultTTLConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of the defaults. Missing fields keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read config file %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "failed to decode config")
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv. Recognized variables:
//
//	DOCCACHE_STORE_DRIVER, DOCCACHE_STORE_USERNAME, DOCCACHE_STORE_PASSWORD,
//	DOCCACHE_STORE_HOST, DOCCACHE_STORE_PORT, DOCCACHE_STORE_DATABASE,
//	DOCCACHE_STORE_COLLECTION, DOCCACHE_STORE_URI, DOCCACHE_STORE_DSN,
//	DOCCACHE_CACHE_CAPACITY, DOCCACHE_CACHE_BACKEND,
//	DOCCACHE_LOG_LEVEL, DOCCACHE_LOG_FORMAT
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STORE_DRIVER":     &c.Store.Driver,
		"STORE_USERNAME":   &c.Store.Username,
		"STORE_PASSWORD":   &c.Store.Password,
		"STORE_HOST":       &c.Store.Host,
		"STORE_DATABASE":   &c.Store.Database,
		"STORE_COLLECTION": &c.Store.Collection,
		"STORE_URI":        &c.Store.URI,
		"STORE_DSN":        &c.Store.DSN,
		"CACHE_BACKEND":    &c.Cache.Backend,
		"LOG_LEVEL":        &c.Log.Level,
		"LOG_FORMAT":       &c.Log.Format,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = v
		}
	}

	ints := map[string]*int{
		"STORE_PORT":     &c.Store.Port,
		"CACHE_CAPACITY": &c.Cache.Capacity,
	}
	for name, field := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.WithContext(
				errors.Wrapf(err, errors.CodeInvalidConfig, "%s%s must be an integer", EnvPrefix, name),
				"value", v)
		}
		*field = n
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Store),
		validation.Field(&c.Cache),
		validation.Field(&c.Health),
		validation.Field(&c.Log),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
	}
	return nil
}

// Validate checks the store settings for the selected driver.
func (s StoreConfig) Validate() error {
	mongo := s.Driver == DriverMongo
	needsDSN := s.Driver == DriverSQLite || s.Driver == DriverPostgres

	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required,
			validation.In(DriverMongo, DriverSQLite, DriverPostgres, DriverMemory)),
		validation.Field(&s.Collection, validation.Required),
		validation.Field(&s.Host, validation.When(mongo && s.URI == "", validation.Required)),
		validation.Field(&s.Port, validation.When(mongo && s.URI == "", validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&s.Database, validation.When(mongo, validation.Required)),
		validation.Field(&s.DSN, validation.When(needsDSN, validation.Required)),
		validation.Field(&s.ConnectTimeout, validation.Min(time.Duration(0))),
	)
}

// Validate checks the logger settings.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&l.Format, validation.In("text", "json")),
	)
}

// MongoConfig converts the store settings for the MongoDB driver.
func (s StoreConfig) MongoConfig() mongostore.Config {
	return mongostore.Config{
		Username:       s.Username,
		Password:       s.Password,
		Host:           s.Host,
		Port:           s.Port,
		Database:       s.Database,
		Collection:     s.Collection,
		URI:            s.URI,
		ConnectTimeout: s.ConnectTimeout,
	}
}

// String describes the store without credentials.
func (s StoreConfig) String() string {
	if s.Driver == DriverMongo {
		return fmt.Sprintf("%s://%s:%d/%s.%s", s.Driver, s.Host, s.Port, s.Database, s.Collection)
	}
	return fmt.Sprintf("%s/%s", s.Driver, s.Collection)
}
