package query

import (
	"context"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// TableQueryBuilder is the entry point bound to one collection. Besides the
// explicit Select and Count entry points it offers the [QueryBuilder] chain
// directly, starting from an empty state.
type TableQueryBuilder struct {
	session *session
}

// NewTableQueryBuilder returns a builder for collection backed by driver.
func NewTableQueryBuilder(driver domain.Driver, collection string, options ...Option) TableQueryBuilder {
	return TableQueryBuilder{session: newSession(driver, collection, options...)}
}

// Name returns the collection name.
func (t TableQueryBuilder) Name() string {
	return t.session.collection
}

// Select returns a [SelectBuilder] with an empty state.
func (t TableQueryBuilder) Select(columns ...string) SelectBuilder {
	return newSelectBuilder(t.session, columns)
}

// Count returns a [CountBuilder] with an empty state. column is accepted for
// compatibility and ignored: the store counts documents.
func (t TableQueryBuilder) Count(column ...string) CountBuilder {
	return newCountBuilder(t.session, NewState(t.session.collection))
}

func (t TableQueryBuilder) query() QueryBuilder {
	return newQueryBuilder(t.session, NewState(t.session.collection))
}

// Eq is a shortcut for Select().Eq.
func (t TableQueryBuilder) Eq(field string, value any) QueryBuilder {
	return t.query().Eq(field, value)
}

// Gte is a shortcut for Select().Gte.
func (t TableQueryBuilder) Gte(field string, value any) QueryBuilder {
	return t.query().Gte(field, value)
}

// Gt is a shortcut for Select().Gt.
func (t TableQueryBuilder) Gt(field string, value any) QueryBuilder {
	return t.query().Gt(field, value)
}

// Order is a shortcut for Select().Order.
func (t TableQueryBuilder) Order(field string, ascending bool) QueryBuilder {
	return t.query().Order(field, ascending)
}

// Single is a shortcut for Select().Single.
func (t TableQueryBuilder) Single(ctx context.Context) domain.Result[domain.Row] {
	return t.query().Single(ctx)
}

// Execute is a shortcut for Select().Execute.
func (t TableQueryBuilder) Execute(ctx context.Context) domain.Result[[]domain.Row] {
	return t.query().Execute(ctx)
}

// Insert stores data as a new document and reads it back by the id the store
// acknowledged, returning the document as stored. data can be a [domain.Row],
// any map with string keys or a struct.
func (t TableQueryBuilder) Insert(ctx context.Context, data any) domain.Result[domain.Row] {
	var stored domain.Row
	err := t.session.run(ctx, OpInsert, func(c domain.Collection) error {
		doc, err := t.session.toRow(data)
		if err != nil {
			return err
		}
		ack, err := c.InsertOne(ctx, doc)
		if err != nil {
			return err
		}
		stored, err = c.FindOne(ctx, domain.Filter{domain.IDField: ack.InsertedID})
		if err != nil {
			return err
		}
		if stored == nil {
			return domain.ErrInsertedNotFound
		}
		return nil
	})
	if err != nil {
		return domain.NewResult[domain.Row](nil, err, t.session.decoder)
	}
	return domain.NewResult(stored, nil, t.session.decoder)
}

// Drop removes the collection with every document in it. Drivers whose
// collections do not implement [domain.Dropper] fail with
// [domain.ErrUnsupported].
func (t TableQueryBuilder) Drop(ctx context.Context) domain.MutationResult {
	err := t.session.run(ctx, OpDrop, func(c domain.Collection) error {
		d, ok := c.(domain.Dropper)
		if !ok {
			return domain.ErrUnsupported
		}
		return d.Drop(ctx)
	})
	return domain.MutationResult{Error: err}
}

// Update returns a builder merging data into the document selected by its Eq
// call.
func (t TableQueryBuilder) Update(data any) UpdateBuilder {
	return UpdateBuilder{session: t.session, data: data}
}

// Delete returns a builder removing the document selected by its Eq call.
func (t TableQueryBuilder) Delete() DeleteBuilder {
	return DeleteBuilder{session: t.session}
}

// UpdateBuilder targets a partial update. Only equality targeting is
// available.
type UpdateBuilder struct {
	session *session
	data    any
}

// Eq merges the update data into the first document whose field equals
// value. Fields not present in the data are left untouched.
func (u UpdateBuilder) Eq(ctx context.Context, field string, value any) domain.MutationResult {
	err := u.session.run(ctx, OpUpdate, func(c domain.Collection) error {
		set, err := u.session.toRow(u.data)
		if err != nil {
			return err
		}
		_, err = c.UpdateOne(ctx, domain.Filter{field: value}, set)
		return err
	})
	return domain.MutationResult{Error: err}
}

// DeleteBuilder targets a single-document removal. Only equality targeting is
// available.
type DeleteBuilder struct {
	session *session
}

// Eq removes the first document whose field equals value.
func (d DeleteBuilder) Eq(ctx context.Context, field string, value any) domain.MutationResult {
	err := d.session.run(ctx, OpDelete, func(c domain.Collection) error {
		_, err := c.DeleteOne(ctx, domain.Filter{field: value})
		return err
	})
	return domain.MutationResult{Error: err}
}

// toRow turns caller data into a document. Rows are used as they are; other
// maps and structs go through the session decoder.
func (s *session) toRow(data any) (domain.Row, error) {
	if data == nil {
		return nil, domain.ErrDocumentType{Value: data}
	}
	if row, ok := data.(domain.Row); ok && row != nil {
		return row, nil
	}
	v := reflect.ValueNoEscapeOf(data)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, domain.ErrDocumentType{Value: data}
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return nil, domain.ErrDocumentType{Value: data}
		}
	case reflect.Struct:
	default:
		return nil, domain.ErrDocumentType{Value: data}
	}

	row := make(domain.Row)
	if err := s.decoder.Decode(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}
