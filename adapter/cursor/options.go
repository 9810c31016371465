package cursor

import "github.com/vinicius-lino-figueiredo/doctable/domain"

// WithDecoder sets the decoder used by [Cursor.Scan].
func WithDecoder(d domain.Decoder) Option {
	return func(c *Cursor) {
		if d != nil {
			c.dec = d
		}
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Cursor)
