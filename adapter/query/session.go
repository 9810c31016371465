package query

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// Operation names carried by [domain.Failure] and log records.
const (
	OpFind    = "find"
	OpFindOne = "findOne"
	OpCount   = "count"
	OpInsert  = "insert"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpDrop    = "drop"
)

// session holds what terminal calls need to reach one collection. It is
// shared by every builder derived from the same [TableQueryBuilder] and never
// modified after construction.
type session struct {
	collection string
	driver     domain.Driver
	logger     *slog.Logger
	decoder    domain.Decoder
}

func newSession(driver domain.Driver, collection string, options ...Option) *session {
	s := session{
		collection: collection,
		driver:     driver,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		decoder:    decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&s)
	}
	return &s
}

// run resolves the collection and calls fn with it. Any error or panic is
// returned as a [*domain.Failure] and logged once.
func (s *session) run(ctx context.Context, op string, fn func(domain.Collection) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrDriverPanic, r)
		}
		if err != nil {
			err = &domain.Failure{Op: op, Collection: s.collection, Err: err}
			s.logger.WarnContext(ctx, "query failed",
				slog.String("op", op),
				slog.String("collection", s.collection),
				slog.Any("error", err),
			)
			return
		}
		s.logger.DebugContext(ctx, "query executed",
			slog.String("op", op),
			slog.String("collection", s.collection),
		)
	}()

	if s.driver == nil {
		return domain.ErrNoDriver
	}
	coll, err := s.driver.Collection(ctx, s.collection)
	if err != nil {
		return err
	}
	return fn(coll)
}

func (s *session) findOptions(state State) []domain.FindOption {
	if len(state.sorts) == 0 {
		return nil
	}
	return []domain.FindOption{domain.WithFindSort(state.Sort())}
}
