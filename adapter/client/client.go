// Package client contains the default table client. It owns the driver and
// hands out one [query.TableQueryBuilder] per collection.
package client

import (
	"context"
	"io"
	"log/slog"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/memstore"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/query"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// Client hands out table builders sharing one driver, logger and decoder.
type Client struct {
	driver  domain.Driver
	logger  *slog.Logger
	decoder domain.Decoder
	dataDir string
}

// NewClient returns a new Client. Without [WithDriver] it uses the embedded
// memstore driver, persisted under [WithDataDir] if one is given.
func NewClient(options ...Option) *Client {
	c := Client{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		decoder: decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&c)
	}
	if c.driver == nil {
		c.driver = memstore.NewDriver(
			memstore.WithDataDir(c.dataDir),
			memstore.WithDecoder(c.decoder),
		)
	}
	return &c
}

// Table returns the entry point for queries on the named collection.
func (c *Client) Table(name string) query.TableQueryBuilder {
	return query.NewTableQueryBuilder(c.driver, name,
		query.WithLogger(c.logger.With(slog.String("table", name))),
		query.WithDecoder(c.decoder),
	)
}

// Driver returns the driver queries are sent to.
func (c *Client) Driver() domain.Driver {
	return c.driver
}

// Close closes the driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
