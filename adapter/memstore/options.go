package memstore

import (
	"os"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// WithDataDir makes every collection persist to "<dir>/<collection>.db". An
// empty dir keeps the store in memory only.
func WithDataDir(dir string) Option {
	return func(d *Driver) {
		d.dataDir = dir
	}
}

// WithFileMode sets the permissions of created datafiles.
func WithFileMode(m os.FileMode) Option {
	return func(d *Driver) {
		if m != 0 {
			d.fileMode = m
		}
	}
}

// WithDirMode sets the permissions of created data directories.
func WithDirMode(m os.FileMode) Option {
	return func(d *Driver) {
		if m != 0 {
			d.dirMode = m
		}
	}
}

// WithIDGenerator sets the generator of "_id" values for inserted documents
// that do not carry one.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(d *Driver) {
		if g != nil {
			d.idGenerator = g
		}
	}
}

// WithMatcher sets the matcher used to evaluate filters.
func WithMatcher(m domain.Matcher) Option {
	return func(d *Driver) {
		if m != nil {
			d.matcher = m
		}
	}
}

// WithComparer sets the comparer used for sorting and ids.
func WithComparer(c domain.Comparer) Option {
	return func(d *Driver) {
		if c != nil {
			d.comparer = c
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

// WithPersistenceFactory overrides how datafiles are opened. It takes
// precedence over [WithDataDir].
func WithPersistenceFactory(f domain.PersistenceFactory) Option {
	return func(d *Driver) {
		if f != nil {
			d.persistenceFactory = f
		}
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Driver)
