// Package mongodriver contains a [domain.Driver] backed by a MongoDB server
// through the official Go driver.
package mongodriver

import (
	"context"
	"time"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultConnectTimeout bounds connecting and server selection.
const DefaultConnectTimeout = 10 * time.Second

// Driver implements [domain.Driver].
type Driver struct {
	client         *mongo.Client
	database       string
	connectTimeout time.Duration
	decoder        domain.Decoder
}

// NewDriver connects to uri and returns a driver whose collections live in
// database. The server is pinged before returning.
func NewDriver(ctx context.Context, uri string, database string, options ...Option) (domain.Driver, error) {
	d := Driver{
		database:       database,
		connectTimeout: DefaultConnectTimeout,
	}
	for _, option := range options {
		option(&d)
	}
	if d.database == "" {
		return nil, ErrNoDatabase
	}

	if d.client == nil {
		opts := mopt.Client().ApplyURI(uri)
		opts.SetConnectTimeout(d.connectTimeout).SetServerSelectionTimeout(d.connectTimeout)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		d.client = client
	}
	if err := d.client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &d, nil
}

// Collection implements [domain.Driver].
func (d *Driver) Collection(ctx context.Context, name string) (domain.Collection, error) {
	if name == "" {
		return nil, domain.ErrNoCollection
	}
	return &Collection{
		coll:    d.client.Database(d.database).Collection(name),
		decoder: d.decoder,
	}, nil
}

// Close implements [domain.Driver].
func (d *Driver) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
