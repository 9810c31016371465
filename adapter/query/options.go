package query

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// WithLogger sets the logger receiving one record per terminal call.
func WithLogger(l *slog.Logger) Option {
	return func(s *session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDecoder sets the decoder used to turn inserted and updated values into
// documents and handed to results for [domain.Result.Decode].
func WithDecoder(d domain.Decoder) Option {
	return func(s *session) {
		if d != nil {
			s.decoder = d
		}
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*session)
