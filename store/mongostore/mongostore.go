package mongostore

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jmgilman/go/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/store"
)

// Defaults for the animal shelter deployment.
const (
	DefaultUsername   = "aacuser"
	DefaultPassword   = "animals"
	DefaultHost       = "nv-desktop-services.apporto.com"
	DefaultPort       = 32327
	DefaultDatabase   = "AAC"
	DefaultCollection = "animals"
)

var _ store.Collection = (*Collection)(nil)

// Config identifies the server, database and collection.
type Config struct {
	Username   string
	Password   string
	Host       string
	Port       int
	Database   string
	Collection string
	// URI overrides the connection string built from the fields above.
	URI string
	// ConnectTimeout bounds server selection; zero keeps the driver default.
	ConnectTimeout time.Duration
}

// DefaultConfig returns the animal shelter connection settings.
func DefaultConfig() Config {
	return Config{
		Username:   DefaultUsername,
		Password:   DefaultPassword,
		Host:       DefaultHost,
		Port:       DefaultPort,
		Database:   DefaultDatabase,
		Collection: DefaultCollection,
	}
}

// URI returns the connection string for cfg, authenticating against the
// target database. Credentials are escaped.
func URI(cfg Config) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	u := url.URL{
		Scheme:   "mongodb",
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"authSource": {cfg.Database}}.Encode(),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

// Collection is a store.Collection backed by a MongoDB collection.
type Collection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to MongoDB. The driver connects lazily, so an unreachable
// server surfaces on the first operation.
func Open(ctx context.Context, cfg Config) (*Collection, error) {
	opts := options.Client().ApplyURI(URI(cfg))
	if cfg.ConnectTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "mongostore: connect")
	}

	return &Collection{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (c *Collection) Name() string {
	return c.coll.Name()
}

// Ping checks that the server is reachable.
func (c *Collection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *Collection) InsertOne(ctx context.Context, doc document.Document) error {
	_, err := c.coll.InsertOne(ctx, ToBSON(doc))
	return err
}

func (c *Collection) Find(ctx context.Context, filter document.Filter) ([]document.Document, error) {
	cursor, err := c.coll.Find(ctx, ToBSON(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []document.Document{}
	for cursor.Next(ctx) {
		doc, err := decodeRaw(cursor.Current)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cursor.Err()
}

func (c *Collection) UpdateOne(ctx context.Context, filter document.Filter, changes document.Document) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, ToBSON(filter), ToBSON(changes))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (c *Collection) UpdateMany(ctx context.Context, filter document.Filter, changes document.Document) (int64, error) {
	res, err := c.coll.UpdateMany(ctx, ToBSON(filter), ToBSON(changes))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter document.Filter) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, ToBSON(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *Collection) DeleteMany(ctx context.Context, filter document.Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, ToBSON(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Close disconnects the client.
func (c *Collection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
