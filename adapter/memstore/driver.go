// Package memstore contains the embedded [domain.Driver] used by default. It
// keeps every collection in memory, indexed by "_id", and can optionally
// persist each one to an append-only datafile.
package memstore

import (
	"context"
	"os"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/index"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
	"github.com/vinicius-lino-figueiredo/doctable/pkg/ctxsync"
)

const (
	DefaultDirMode  os.FileMode = persistence.DefaultDirMode
	DefaultFileMode os.FileMode = persistence.DefaultFileMode
)

// Driver implements [domain.Driver].
type Driver struct {
	dataDir            string
	fileMode           os.FileMode
	dirMode            os.FileMode
	executor           *ctxsync.Mutex
	collections        map[string]*Collection
	closed             bool
	persistenceFactory domain.PersistenceFactory
	idGenerator        domain.IDGenerator
	matcher            domain.Matcher
	comparer           domain.Comparer
	decoder            domain.Decoder
}

// NewDriver returns a new implementation of [domain.Driver].
func NewDriver(options ...Option) domain.Driver {
	d := Driver{
		fileMode:    DefaultFileMode,
		dirMode:     DefaultDirMode,
		executor:    ctxsync.NewMutex(),
		collections: make(map[string]*Collection),
		idGenerator: idgenerator.NewIDGenerator(),
		comparer:    comparer.NewComparer(),
		decoder:     decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&d)
	}
	if d.matcher == nil {
		d.matcher = matcher.NewMatcher(matcher.WithComparer(d.comparer))
	}
	if d.persistenceFactory == nil && d.dataDir != "" {
		d.persistenceFactory = persistence.Factory(
			d.dataDir,
			persistence.WithFileMode(d.fileMode),
			persistence.WithDirMode(d.dirMode),
		)
	}
	return &d
}

// Collection implements [domain.Driver]. Collections are created on first
// use and, when persistent, loaded from their datafile at that moment.
func (d *Driver) Collection(ctx context.Context, name string) (domain.Collection, error) {
	if name == "" {
		return nil, domain.ErrNoCollection
	}
	if err := d.executor.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.executor.Unlock()

	if d.closed {
		return nil, domain.ErrDriverClosed
	}
	if c, ok := d.collections[name]; ok {
		return c, nil
	}

	c := &Collection{
		name:        name,
		executor:    ctxsync.NewMutex(),
		index:       index.NewIndex(index.WithComparer(d.comparer)),
		idGenerator: d.idGenerator,
		matcher:     d.matcher,
		comparer:    d.comparer,
		decoder:     d.decoder,
	}
	if d.persistenceFactory != nil {
		p, err := d.persistenceFactory(name)
		if err != nil {
			return nil, err
		}
		c.persistence = p
		if err := c.load(ctx); err != nil {
			return nil, err
		}
	}
	d.collections[name] = c
	return c, nil
}

// Close implements [domain.Driver]. Data kept only in memory is lost.
func (d *Driver) Close(ctx context.Context) error {
	if err := d.executor.LockWithContext(ctx); err != nil {
		return err
	}
	defer d.executor.Unlock()
	d.closed = true
	for _, c := range d.collections {
		c.closed.Store(true)
	}
	clear(d.collections)
	return nil
}
