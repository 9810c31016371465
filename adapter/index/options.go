package index

import "github.com/vinicius-lino-figueiredo/doctable/domain"

// WithComparer sets the comparer used to order ids.
func WithComparer(c domain.Comparer) Option {
	return func(i *Index) {
		if c != nil {
			i.comparer = c
		}
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Index)
