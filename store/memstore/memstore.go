// Package memstore is an in-process store.Collection. Documents are kept in
// insertion order behind a mutex and evaluated with the document package
// matcher, so it behaves like a small document database without a server.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/store"
)

var _ store.Collection = (*Collection)(nil)

// ErrDuplicateID is returned when a document reuses an existing _id.
var ErrDuplicateID = errors.New(errors.CodeAlreadyExists, "memstore: duplicate "+document.IDField)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New(errors.CodeUnavailable, "memstore: collection closed")

// Collection stores documents in memory.
type Collection struct {
	mu     sync.RWMutex
	name   string
	docs   []document.Document
	newID  func() string
	closed bool
}

// Option configures a Collection.
type Option func(*Collection)

// WithDocuments seeds the collection. Documents are cloned and receive an
// _id when they lack one.
func WithDocuments(docs ...document.Document) Option {
	return func(c *Collection) {
		for _, doc := range docs {
			c.docs = append(c.docs, c.withID(doc))
		}
	}
}

// WithIDGenerator replaces the uuid based _id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Collection) {
		c.newID = fn
	}
}

// New creates an empty collection.
func New(name string, opts ...Option) *Collection {
	c := &Collection{
		name:  name,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) InsertOne(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	doc = c.withID(doc)
	id := doc[document.IDField]
	for _, existing := range c.docs {
		if existing[document.IDField].Equal(id) {
			return errors.Wrapf(ErrDuplicateID, errors.CodeAlreadyExists, "insert %s", id)
		}
	}

	c.docs = append(c.docs, doc)
	return nil
}

func (c *Collection) Find(ctx context.Context, filter document.Filter) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}

	out := []document.Document{}
	for _, doc := range c.docs {
		ok, err := document.Matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter document.Filter, changes document.Document) (int64, error) {
	return c.update(ctx, filter, changes, false)
}

func (c *Collection) UpdateMany(ctx context.Context, filter document.Filter, changes document.Document) (int64, error) {
	return c.update(ctx, filter, changes, true)
}

// update counts documents whose content actually changed.
func (c *Collection) update(ctx context.Context, filter document.Filter, changes document.Document, many bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := document.ValidateUpdate(changes); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}

	var modified int64
	for i, doc := range c.docs {
		ok, err := document.Matches(doc, filter)
		if err != nil {
			return modified, err
		}
		if !ok {
			continue
		}

		next, changed, err := document.ApplyUpdate(doc, changes)
		if err != nil {
			return modified, err
		}
		if changed {
			c.docs[i] = next
			modified++
		}
		if !many {
			break
		}
	}
	return modified, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter document.Filter) (int64, error) {
	return c.delete(ctx, filter, false)
}

func (c *Collection) DeleteMany(ctx context.Context, filter document.Filter) (int64, error) {
	return c.delete(ctx, filter, true)
}

func (c *Collection) delete(ctx context.Context, filter document.Filter, many bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}

	drop := make(map[int]struct{})
	for i, doc := range c.docs {
		ok, err := document.Matches(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			drop[i] = struct{}{}
			if !many {
				break
			}
		}
	}
	if len(drop) == 0 {
		return 0, nil
	}

	kept := make([]document.Document, 0, len(c.docs)-len(drop))
	for i, doc := range c.docs {
		if _, ok := drop[i]; !ok {
			kept = append(kept, doc)
		}
	}
	c.docs = kept
	return int64(len(drop)), nil
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Ping fails once the collection is closed.
func (c *Collection) Ping(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Collection) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Collection) withID(doc document.Document) document.Document {
	doc = doc.Clone()
	if doc == nil {
		doc = document.Document{}
	}
	if id, ok := doc[document.IDField]; !ok || id.IsNull() {
		doc[document.IDField] = document.String(c.newID())
	}
	return doc
}
