package mongodriver

import (
	"errors"
	"time"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoDatabase is returned by [NewDriver] when no database name is given.
var ErrNoDatabase = errors.New("mongo driver: database name is empty")

// WithConnectTimeout bounds connecting and server selection. Ignored when
// used with [WithClient].
func WithConnectTimeout(t time.Duration) Option {
	return func(d *Driver) {
		if t > 0 {
			d.connectTimeout = t
		}
	}
}

// WithClient reuses an already connected client instead of dialing the uri.
func WithClient(c *mongo.Client) Option {
	return func(d *Driver) {
		if c != nil {
			d.client = c
		}
	}
}

// WithDecoder sets the decoder handed to the cursors returned by Find.
func WithDecoder(dec domain.Decoder) Option {
	return func(d *Driver) {
		if dec != nil {
			d.decoder = dec
		}
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Driver)
