package query

import (
	"context"
	"log/slog"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// QueryBuilder accumulates filters and sorts for a row query. Its terminal
// methods are [QueryBuilder.Single] and [QueryBuilder.Execute].
type QueryBuilder struct {
	filters[QueryBuilder]
	session *session
}

func newQueryBuilder(s *session, state State) QueryBuilder {
	return QueryBuilder{
		filters: filters[QueryBuilder]{
			state: state,
			wrap:  func(st State) QueryBuilder { return newQueryBuilder(s, st) },
		},
		session: s,
	}
}

// Order returns a new builder with field appended to the sort list. Earlier
// calls take precedence over later ones.
func (q QueryBuilder) Order(field string, ascending bool) QueryBuilder {
	return newQueryBuilder(q.session, q.state.withSort(field, ascending))
}

// Sort returns the store-native sort list the builder would send.
func (q QueryBuilder) Sort() domain.Sort {
	return q.state.Sort()
}

// Single returns the first row matching the query. No matching row is not a
// failure: the result carries a nil row and a nil error.
func (q QueryBuilder) Single(ctx context.Context) domain.Result[domain.Row] {
	var row domain.Row
	err := q.session.run(ctx, OpFindOne, func(c domain.Collection) error {
		var err error
		row, err = c.FindOne(ctx, q.state.Filter(), q.session.findOptions(q.state)...)
		return err
	})
	if err != nil {
		return domain.NewResult[domain.Row](nil, err, q.session.decoder)
	}
	return domain.NewResult(row, nil, q.session.decoder)
}

// Execute returns every row matching the query, in sort order. No matching
// row yields an empty, non-nil list.
func (q QueryBuilder) Execute(ctx context.Context) domain.Result[[]domain.Row] {
	var rows []domain.Row
	err := q.session.run(ctx, OpFind, func(c domain.Collection) error {
		cur, err := c.Find(ctx, q.state.Filter(), q.session.findOptions(q.state)...)
		if err != nil {
			return err
		}
		defer cur.Close()
		rows, err = cur.All(ctx)
		return err
	})
	if err != nil {
		return domain.NewResult[[]domain.Row](nil, err, q.session.decoder)
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	return domain.NewResult(rows, nil, q.session.decoder)
}

// SelectBuilder is the entry point returned by [TableQueryBuilder.Select]. It
// chains exactly like [QueryBuilder]. The requested columns are kept but not
// enforced: rows are always returned whole.
type SelectBuilder struct {
	QueryBuilder
	columns []string
}

func newSelectBuilder(s *session, columns []string) SelectBuilder {
	if len(columns) > 0 && !(len(columns) == 1 && columns[0] == "*") {
		s.logger.Debug("column selection is not enforced",
			slog.String("collection", s.collection),
			slog.Any("columns", columns),
		)
	}
	return SelectBuilder{
		QueryBuilder: newQueryBuilder(s, NewState(s.collection)),
		columns:      columns,
	}
}

// Columns returns the columns passed to Select.
func (s SelectBuilder) Columns() []string {
	return append([]string(nil), s.columns...)
}
