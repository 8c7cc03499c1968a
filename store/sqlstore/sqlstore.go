// Package sqlstore keeps documents as JSON rows in a relational database
// through bun. One table holds every collection; rows of a collection are
// loaded by the collection column and filtered with the document matcher.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/store"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var _ store.Collection = (*Collection)(nil)

// documentRow is the storage model. DocID holds the canonical JSON of the
// document _id so non-string ids stay unique per collection.
type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Seq        int64  `bun:"seq,pk,autoincrement"`
	Collection string `bun:"collection,notnull,unique:documents_collection_doc_id"`
	DocID      string `bun:"doc_id,notnull,unique:documents_collection_doc_id"`
	Body       string `bun:"body,notnull,type:text"`
}

// Collection is a store.Collection backed by bun.
type Collection struct {
	db     *bun.DB
	name   string
	ownsDB bool
}

// Open connects to the database described by driver and dsn, creates the
// schema when missing and returns the named collection.
func Open(ctx context.Context, driver, dsn, collection string) (*Collection, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, errors.Newf(errors.CodeInvalidConfig, "sqlstore: unsupported driver %q", driver)
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatabase, "sqlstore: open %s", driver)
	}

	var db *bun.DB
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and
		// serializes writers.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	} else {
		db = bun.NewDB(sqldb, pgdialect.New())
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, errors.CodeDatabase, "sqlstore: ping %s", driver)
	}

	c, err := New(ctx, db, collection)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.ownsDB = true
	return c, nil
}

// New returns a collection over an existing bun database. The caller keeps
// ownership of db.
func New(ctx context.Context, db *bun.DB, collection string) (*Collection, error) {
	if err := CreateSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Collection{db: db, name: collection}, nil
}

// CreateSchema creates the documents table and its collection index.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "sqlstore: create table")
	}

	if _, err := db.NewCreateIndex().
		Model((*documentRow)(nil)).
		Index("documents_collection_idx").
		Column("collection").
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "sqlstore: create index")
	}
	return nil
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) InsertOne(ctx context.Context, doc document.Document) error {
	doc = doc.Clone()
	if doc == nil {
		doc = document.Document{}
	}
	if id, ok := doc[document.IDField]; !ok || id.IsNull() {
		doc[document.IDField] = document.String(uuid.NewString())
	}

	row, err := c.encode(doc)
	if err != nil {
		return err
	}

	if _, err := c.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "sqlstore: insert")
	}
	return nil
}

func (c *Collection) Find(ctx context.Context, filter document.Filter) ([]document.Document, error) {
	matches, err := c.match(ctx, c.db, filter, true)
	if err != nil {
		return nil, err
	}

	out := make([]document.Document, len(matches))
	for i, m := range matches {
		out[i] = m.doc
	}
	return out, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter document.Filter, changes document.Document) (int64, error) {
	return c.update(ctx, filter, changes, false)
}

func (c *Collection) UpdateMany(ctx context.Context, filter document.Filter, changes document.Document) (int64, error) {
	return c.update(ctx, filter, changes, true)
}

func (c *Collection) update(ctx context.Context, filter document.Filter, changes document.Document, many bool) (int64, error) {
	if err := document.ValidateUpdate(changes); err != nil {
		return 0, err
	}

	var modified int64
	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		matches, err := c.match(ctx, tx, filter, many)
		if err != nil {
			return err
		}

		for _, m := range matches {
			next, changed, err := document.ApplyUpdate(m.doc, changes)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}

			row, err := c.encode(next)
			if err != nil {
				return err
			}
			row.Seq = m.seq

			if _, err := tx.NewUpdate().
				Model(&row).
				Column("body").
				WherePK().
				Exec(ctx); err != nil {
				return errors.Wrap(err, errors.CodeDatabase, "sqlstore: update")
			}
			modified++
		}
		return nil
	})
	if err != nil {
		return 0, err
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
	var deleted int64
	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		matches, err := c.match(ctx, tx, filter, many)
		if err != nil || len(matches) == 0 {
			return err
		}

		seqs := make([]int64, len(matches))
		for i, m := range matches {
			seqs[i] = m.seq
		}

		res, err := tx.NewDelete().
			Model((*documentRow)(nil)).
			Where("seq IN (?)", bun.In(seqs)).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CodeDatabase, "sqlstore: delete")
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Ping verifies the database connection.
func (c *Collection) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "sqlstore: ping")
	}
	return nil
}

// Close closes the database when the collection opened it.
func (c *Collection) Close(context.Context) error {
	if !c.ownsDB {
		return nil
	}
	return c.db.Close()
}

type matchedRow struct {
	seq int64
	doc document.Document
}

// match loads the collection in insertion order and keeps matching rows,
// stopping after the first one unless many is set.
func (c *Collection) match(ctx context.Context, db bun.IDB, filter document.Filter, many bool) ([]matchedRow, error) {
	var rows []documentRow
	if err := db.NewSelect().
		Model(&rows).
		Where("collection = ?", c.name).
		Order("seq ASC").
		Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "sqlstore: select")
	}

	out := []matchedRow{}
	for _, row := range rows {
		doc, err := document.ParseJSON([]byte(row.Body))
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeDatabase, "sqlstore: decode row %d", row.Seq)
		}

		ok, err := document.Matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		out = append(out, matchedRow{seq: row.Seq, doc: doc})
		if !many {
			break
		}
	}
	return out, nil
}

func (c *Collection) encode(doc document.Document) (documentRow, error) {
	id, err := json.Marshal(doc[document.IDField])
	if err != nil {
		return documentRow{}, errors.Wrap(err, errors.CodeInvalidInput, "sqlstore: encode id")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return documentRow{}, errors.Wrap(err, errors.CodeInvalidInput, "sqlstore: encode body")
	}
	return documentRow{
		Collection: c.name,
		DocID:      string(id),
		Body:       string(body),
	}, nil
}
