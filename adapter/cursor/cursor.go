// Package cursor contains the default [domain.Cursor] implementation.
package cursor

import (
	"context"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// Cursor implements [domain.Cursor] over an already materialized result set.
type Cursor struct {
	data   []domain.Row
	ctx    context.Context
	cancel context.CancelCauseFunc
	dec    domain.Decoder
	index  int
}

// NewCursor returns a new implementation of [domain.Cursor]. The cursor is
// closed as soon as ctx is done.
func NewCursor(ctx context.Context, rows []domain.Row, options ...Option) (domain.Cursor, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	ctx, cancel := context.WithCancelCause(ctx)
	cur := &Cursor{
		data:   rows,
		ctx:    ctx,
		cancel: cancel,
		dec:    decoder.NewDecoder(),
		index:  -1,
	}
	for _, option := range options {
		option(cur)
	}
	return cur, nil
}

// Err implements [domain.Cursor].
func (c *Cursor) Err() error {
	return context.Cause(c.ctx)
}

// Next implements [domain.Cursor].
func (c *Cursor) Next() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	if c.index+1 < len(c.data) {
		c.index++
		return true
	}
	return false
}

// Scan implements [domain.Cursor].
func (c *Cursor) Scan(ctx context.Context, target any) error {
	select {
	case <-c.ctx.Done():
		return context.Cause(c.ctx)
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if c.index < 0 {
		return domain.ErrScanBeforeNext
	}
	return c.dec.Decode(c.data[c.index], target)
}

// All implements [domain.Cursor].
func (c *Cursor) All(ctx context.Context) ([]domain.Row, error) {
	select {
	case <-c.ctx.Done():
		return nil, context.Cause(c.ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	res := make([]domain.Row, 0, len(c.data)-(c.index+1))
	for c.Next() {
		res = append(res, c.data[c.index])
	}
	return res, c.Close()
}

// Close implements [domain.Cursor].
func (c *Cursor) Close() error {
	select {
	case <-c.ctx.Done():
		return context.Cause(c.ctx)
	default:
	}
	c.cancel(domain.ErrCursorClosed)
	c.data = nil
	return nil
}
