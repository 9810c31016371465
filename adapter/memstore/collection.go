package memstore

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/index"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
	"github.com/vinicius-lino-figueiredo/doctable/pkg/ctxsync"
)

// Collection implements [domain.Collection]. Operations are serialized by an
// executor so every call observes the effects of the previous ones.
type Collection struct {
	name        string
	closed      atomic.Bool
	executor    *ctxsync.Mutex
	index       domain.Index
	persistence domain.Persistence
	idGenerator domain.IDGenerator
	matcher     domain.Matcher
	comparer    domain.Comparer
	decoder     domain.Decoder
}

func (c *Collection) load(ctx context.Context) error {
	docs, err := c.persistence.Load(ctx)
	if err != nil {
		return err
	}
	for n, doc := range docs {
		docs[n] = cloneRow(doc)
	}
	return c.index.Reset(ctx, docs...)
}

func (c *Collection) exec(ctx context.Context, fn func() error) error {
	if c.closed.Load() {
		return domain.ErrDriverClosed
	}
	return c.executor.Do(ctx, fn)
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Cursor, error) {
	var rows []domain.Row
	err := c.exec(ctx, func() error {
		var err error
		rows, err = c.find(filter, domain.NewFindOptions(options...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return cursor.NewCursor(ctx, rows, cursor.WithDecoder(c.decoder))
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Row, error) {
	var rows []domain.Row
	err := c.exec(ctx, func() error {
		opts := domain.NewFindOptions(options...)
		opts.Limit = 1
		var err error
		rows, err = c.find(filter, opts)
		return err
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// InsertOne implements [domain.Collection]. A document without "_id", or
// with a zero one, gets a generated id.
func (c *Collection) InsertOne(ctx context.Context, doc domain.Row) (domain.InsertOneResult, error) {
	var res domain.InsertOneResult
	err := c.exec(ctx, func() error {
		newDoc := cloneRow(doc)
		if newDoc == nil {
			newDoc = make(domain.Row)
		}
		if isZeroID(newDoc[index.IDField]) {
			id, err := c.idGenerator.GenerateID()
			if err != nil {
				return err
			}
			newDoc[index.IDField] = id
		}
		if err := checkFields(newDoc); err != nil {
			return err
		}
		if err := c.index.Insert(ctx, newDoc); err != nil {
			return err
		}
		if err := c.persist(ctx, newDoc); err != nil {
			return errors.Join(err, c.index.Remove(ctx, newDoc))
		}
		res.InsertedID = newDoc[index.IDField]
		return nil
	})
	return res, err
}

// UpdateOne implements [domain.Collection]. set is merged into the first
// matching document; dotted keys address nested fields.
func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, set domain.Row) (domain.UpdateResult, error) {
	var res domain.UpdateResult
	err := c.exec(ctx, func() error {
		old, err := c.first(filter)
		if err != nil || old == nil {
			return err
		}
		res.MatchedCount = 1

		newDoc := cloneRow(old)
		for k, v := range set {
			if k == index.IDField {
				if cmp, err := c.comparer.Compare(v, old[index.IDField]); err != nil || cmp != 0 {
					return domain.ErrCannotModifyID
				}
				continue
			}
			value := normalize(v)
			if err := checkPath(k); err != nil {
				return err
			}
			if err := checkFields(value); err != nil {
				return err
			}
			setField(newDoc, k, value)
		}

		if same, err := c.comparer.Compare(old, newDoc); err == nil && same == 0 {
			return nil
		}
		if err := c.replace(ctx, old, newDoc); err != nil {
			return err
		}
		res.ModifiedCount = 1
		return nil
	})
	return res, err
}

// DeleteOne implements [domain.Collection].
func (c *Collection) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	var res domain.DeleteResult
	err := c.exec(ctx, func() error {
		old, err := c.first(filter)
		if err != nil || old == nil {
			return err
		}
		if err := c.index.Remove(ctx, old); err != nil {
			return err
		}
		tombstone := domain.Row{index.IDField: old[index.IDField], persistence.DeletedField: true}
		if err := c.persist(ctx, tombstone); err != nil {
			return errors.Join(err, c.index.Insert(ctx, old))
		}
		res.DeletedCount = 1
		return nil
	})
	return res, err
}

// CountDocuments implements [domain.Collection].
func (c *Collection) CountDocuments(ctx context.Context, filter domain.Filter) (int64, error) {
	var count int64
	err := c.exec(ctx, func() error {
		filter := normalizeFilter(filter)
		for doc := range c.index.GetAll() {
			ok, err := c.matcher.Match(doc, filter)
			if err != nil {
				return err
			}
			if ok {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Drop implements [domain.Dropper]. The index is emptied and the datafile, if
// any, removed. The collection stays usable.
func (c *Collection) Drop(ctx context.Context) error {
	return c.exec(ctx, func() error {
		if err := c.index.Reset(ctx); err != nil {
			return err
		}
		if c.persistence == nil {
			return nil
		}
		return c.persistence.Drop(ctx)
	})
}

// find returns copies of the matching documents, sorted, skipped and limited
// according to opts.
func (c *Collection) find(filter domain.Filter, opts domain.FindOptions) ([]domain.Row, error) {
	filter = normalizeFilter(filter)
	matches := make([]domain.Row, 0)
	for doc := range c.index.GetAll() {
		ok, err := c.matcher.Match(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, doc)
		}
		// without sorting the first matches in id order are enough
		if len(opts.Sort) == 0 && opts.Limit > 0 && int64(len(matches)) >= opts.Skip+opts.Limit {
			break
		}
	}

	if err := c.sort(matches, opts.Sort); err != nil {
		return nil, err
	}

	if opts.Skip > 0 {
		matches = matches[min(opts.Skip, int64(len(matches))):]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(matches)) {
		matches = matches[:opts.Limit]
	}

	res := make([]domain.Row, len(matches))
	for n, doc := range matches {
		res[n] = cloneRow(doc)
	}
	return res, nil
}

func (c *Collection) sort(rows []domain.Row, sort domain.Sort) error {
	if len(sort) == 0 {
		return nil
	}
	var errs []error
	slices.SortStableFunc(rows, func(a, b domain.Row) int {
		for _, s := range sort {
			cmp, err := c.comparer.Compare(getField(a, s.Key), getField(b, s.Key))
			if err != nil {
				errs = append(errs, err)
				return 0
			}
			if cmp != 0 {
				if s.Order < 0 {
					return -cmp
				}
				return cmp
			}
		}
		return 0
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// first returns the stored document matching filter with the lowest id.
func (c *Collection) first(filter domain.Filter) (domain.Row, error) {
	filter = normalizeFilter(filter)
	for doc := range c.index.GetAll() {
		ok, err := c.matcher.Match(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			return doc, nil
		}
	}
	return nil, nil
}

// replace swaps old for newDoc in the index and persists newDoc, restoring
// old if any step fails.
func (c *Collection) replace(ctx context.Context, old, newDoc domain.Row) error {
	if err := c.index.Remove(ctx, old); err != nil {
		return err
	}
	if err := c.index.Insert(ctx, newDoc); err != nil {
		return errors.Join(err, c.index.Insert(ctx, old))
	}
	if err := c.persist(ctx, newDoc); err != nil {
		return errors.Join(err, c.index.Remove(ctx, newDoc), c.index.Insert(ctx, old))
	}
	return nil
}

func (c *Collection) persist(ctx context.Context, docs ...domain.Row) error {
	if c.persistence == nil {
		return nil
	}
	return c.persistence.Append(ctx, docs...)
}
