package query

import (
	"context"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// CountBuilder accumulates filters for a count. Counting is order
// independent, so it has no Order method.
type CountBuilder struct {
	filters[CountBuilder]
	session *session
}

func newCountBuilder(s *session, state State) CountBuilder {
	return CountBuilder{
		filters: filters[CountBuilder]{
			state: state,
			wrap:  func(st State) CountBuilder { return newCountBuilder(s, st) },
		},
		session: s,
	}
}

// Execute counts the documents matching the query. Zero matches is a
// successful count of zero.
func (c CountBuilder) Execute(ctx context.Context) domain.CountResult {
	var n int64
	err := c.session.run(ctx, OpCount, func(coll domain.Collection) error {
		var err error
		n, err = coll.CountDocuments(ctx, c.state.Filter())
		return err
	})
	if err != nil {
		return domain.CountResult{Error: err}
	}
	return domain.CountResult{Count: &n}
}
