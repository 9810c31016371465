package matcher

import "github.com/vinicius-lino-figueiredo/doctable/domain"

// WithComparer sets the comparer implementation for value comparisons.
func WithComparer(c domain.Comparer) Option {
	return func(m *Matcher) {
		if c != nil {
			m.comparer = c
		}
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Matcher)
