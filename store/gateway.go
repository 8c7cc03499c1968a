package store

import (
	"context"

	"github.com/jmgilman/go/errors"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/pkg/logging"
)

// Collection is the driver seam between the gateway and a concrete document
// store. Implementations report every failure as an error; the gateway decides
// what reaches the caller.
type Collection interface {
	// Name identifies the collection in logs.
	Name() string
	InsertOne(ctx context.Context, doc document.Document) error
	Find(ctx context.Context, filter document.Filter) ([]document.Document, error)
	UpdateOne(ctx context.Context, filter document.Filter, changes document.Document) (int64, error)
	UpdateMany(ctx context.Context, filter document.Filter, changes document.Document) (int64, error)
	DeleteOne(ctx context.Context, filter document.Filter) (int64, error)
	DeleteMany(ctx context.Context, filter document.Filter) (int64, error)
	Close(ctx context.Context) error
}

// Pinger is implemented by collections that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Gateway performs CRUD against a single collection.
//
// Invalid arguments are returned as errors carrying errors.CodeInvalidInput and
// never reach the collection. Store failures are logged and degrade to false,
// an empty result or zero; they are not returned.
type Gateway struct {
	coll   Collection
	name   string
	logger *logging.Logger

	inserts  *xsync.Counter
	finds    *xsync.Counter
	updates  *xsync.Counter
	deletes  *xsync.Counter
	failures *xsync.Counter
	rejected *xsync.Counter
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for store failures.
func WithLogger(logger *logging.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithName overrides the collection name used in logs.
func WithName(name string) Option {
	return func(g *Gateway) {
		g.name = name
	}
}

// New creates a Gateway over coll.
func New(coll Collection, opts ...Option) *Gateway {
	g := &Gateway{
		coll:     coll,
		name:     coll.Name(),
		inserts:  xsync.NewCounter(),
		finds:    xsync.NewCounter(),
		updates:  xsync.NewCounter(),
		deletes:  xsync.NewCounter(),
		failures: xsync.NewCounter(),
		rejected: xsync.NewCounter(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.OrNoop(g.logger).WithCollection(g.name)
	return g
}

// Insert adds doc to the collection. It reports whether the store accepted it.
func (g *Gateway) Insert(ctx context.Context, doc document.Document) (bool, error) {
	if doc.IsEmpty() {
		return false, g.inputError("document is empty")
	}

	g.inserts.Inc()
	if err := g.coll.InsertOne(ctx, doc); err != nil {
		g.storeFailure(ctx, "insert", err)
		return false, nil
	}
	return true, nil
}

// Find returns every document matching filter. A nil or empty filter matches
// all documents. Store failures yield an empty, non-nil slice.
func (g *Gateway) Find(ctx context.Context, filter document.Filter) []document.Document {
	g.finds.Inc()
	docs, err := g.coll.Find(ctx, filter)
	if err != nil {
		g.storeFailure(ctx, "find", err)
		return []document.Document{}
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return docs
}

// Update applies changes to the first matching document, or to all of them
// when many is set. It returns the number of modified documents.
func (g *Gateway) Update(ctx context.Context, filter document.Filter, changes document.Document, many bool) (int64, error) {
	if filter.IsEmpty() {
		return 0, g.inputError("update filter is empty")
	}
	if changes.IsEmpty() {
		return 0, g.inputError("update changes are empty")
	}

	g.updates.Inc()
	op, update := "update_one", g.coll.UpdateOne
	if many {
		op, update = "update_many", g.coll.UpdateMany
	}

	n, err := update(ctx, filter, changes)
	if err != nil {
		g.storeFailure(ctx, op, err)
		return 0, nil
	}
	return n, nil
}

// Delete removes the first matching document, or all of them when many is
// set. It returns the number of deleted documents.
func (g *Gateway) Delete(ctx context.Context, filter document.Filter, many bool) (int64, error) {
	if filter.IsEmpty() {
		return 0, g.inputError("delete filter is empty")
	}

	g.deletes.Inc()
	op, del := "delete_one", g.coll.DeleteOne
	if many {
		op, del = "delete_many", g.coll.DeleteMany
	}

	n, err := del(ctx, filter)
	if err != nil {
		g.storeFailure(ctx, op, err)
		return 0, nil
	}
	return n, nil
}

// Name returns the collection name.
func (g *Gateway) Name() string {
	return g.name
}

// Ping checks that the store is reachable. Collections that do not implement
// Pinger are always reachable. Unlike the CRUD methods, Ping returns store
// failures.
func (g *Gateway) Ping(ctx context.Context) error {
	p, ok := g.coll.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeDatabase, "store ping failed"), "collection", g.name)
	}
	return nil
}

// Close releases the underlying collection.
func (g *Gateway) Close(ctx context.Context) error {
	if err := g.coll.Close(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to close collection")
	}
	return nil
}

// Stats is a snapshot of gateway activity.
type Stats struct {
	Inserts     int64 `json:"inserts"`
	Finds       int64 `json:"finds"`
	Updates     int64 `json:"updates"`
	Deletes     int64 `json:"deletes"`
	Failures    int64 `json:"failures"`
	InputErrors int64 `json:"input_errors"`
}

// Stats returns the operation counters. Rejected input is not counted as an operation.
func (g *Gateway) Stats() Stats {
	return Stats{
		Inserts:     g.inserts.Value(),
		Finds:       g.finds.Value(),
		Updates:     g.updates.Value(),
		Deletes:     g.deletes.Value(),
		Failures:    g.failures.Value(),
		InputErrors: g.rejected.Value(),
	}
}

func (g *Gateway) inputError(msg string) error {
	g.rejected.Inc()
	return errors.WithContext(errors.New(errors.CodeInvalidInput, msg), "collection", g.name)
}

func (g *Gateway) storeFailure(ctx context.Context, op string, err error) {
	g.failures.Inc()
	g.logger.LogStoreFailure(ctx, op, errors.Wrapf(err, errors.CodeDatabase, "%s on %s failed", op, g.name))
}

// IsInputError reports whether err was raised for an invalid argument.
func IsInputError(err error) bool {
	return err != nil && errors.GetCode(err) == errors.CodeInvalidInput
}
