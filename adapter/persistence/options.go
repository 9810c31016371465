package persistence

import "os"

// WithFileMode sets the file permissions for datafiles.
func WithFileMode(f os.FileMode) Option {
	return func(p *Persistence) {
		p.fileMode = f
	}
}

// WithDirMode sets the permissions of directories created for datafiles.
func WithDirMode(d os.FileMode) Option {
	return func(p *Persistence) {
		p.dirMode = d
	}
}

// WithCorruptAlertThreshold sets the rate of unreadable lines above which
// loading fails. Defaults to 0.1 (10%).
func WithCorruptAlertThreshold(c float64) Option {
	return func(p *Persistence) {
		p.corruptAlertThreshold = c
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*Persistence)
