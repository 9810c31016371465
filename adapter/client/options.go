package client

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// WithDriver sets the document store queries are sent to.
func WithDriver(d domain.Driver) Option {
	return func(c *Client) {
		if d != nil {
			c.driver = d
		}
	}
}

// WithLogger sets the logger terminal calls report to. Failures are logged at
// warn level and successful calls at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDecoder sets the decoder used for struct data and [domain.Result.Decode].
func WithDecoder(d domain.Decoder) Option {
	return func(c *Client) {
		if d != nil {
			c.decoder = d
		}
	}
}

// WithDataDir persists the default embedded driver under dir. It has no effect
// together with [WithDriver].
func WithDataDir(dir string) Option {
	return func(c *Client) {
		c.dataDir = dir
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Client)
