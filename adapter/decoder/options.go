package decoder

// WithTagName sets the struct tag used to name fields. Defaults to [TagName].
func WithTagName(t string) Option {
	return func(d *Decoder) {
		d.tagName = t
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Decoder)
