package mongodriver

import (
	"context"
	"errors"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

// Collection implements [domain.Collection].
type Collection struct {
	coll    *mongo.Collection
	decoder domain.Decoder
}

// Find implements [domain.Collection]. The server cursor is drained before
// returning, so the returned cursor holds no connection.
func (c *Collection) Find(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Cursor, error) {
	fo := domain.NewFindOptions(options...)
	findOpts := mopt.Find()
	if len(fo.Sort) > 0 {
		findOpts.SetSort(sortDoc(fo.Sort))
	}
	if fo.Limit > 0 {
		findOpts.SetLimit(fo.Limit)
	}
	if fo.Skip > 0 {
		findOpts.SetSkip(fo.Skip)
	}

	cur, err := c.coll.Find(ctx, filterDoc(filter), findOpts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]domain.Row, len(docs))
	for n, doc := range docs {
		rows[n] = toRow(doc)
	}
	return cursor.NewCursor(ctx, rows, cursor.WithDecoder(c.decoder))
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Row, error) {
	fo := domain.NewFindOptions(options...)
	findOpts := mopt.FindOne()
	if len(fo.Sort) > 0 {
		findOpts.SetSort(sortDoc(fo.Sort))
	}
	if fo.Skip > 0 {
		findOpts.SetSkip(fo.Skip)
	}

	var doc bson.M
	err := c.coll.FindOne(ctx, filterDoc(filter), findOpts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRow(doc), nil
}

// InsertOne implements [domain.Collection]. Documents without "_id" get an
// ObjectID from the server driver.
func (c *Collection) InsertOne(ctx context.Context, doc domain.Row) (domain.InsertOneResult, error) {
	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return domain.InsertOneResult{}, err
	}
	return domain.InsertOneResult{InsertedID: res.InsertedID}, nil
}

// UpdateOne implements [domain.Collection] with a "$set" update.
func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, set domain.Row) (domain.UpdateResult, error) {
	if len(set) == 0 {
		// the server rejects an empty $set
		n, err := c.coll.CountDocuments(ctx, filterDoc(filter), mopt.Count().SetLimit(1))
		return domain.UpdateResult{MatchedCount: n}, err
	}
	res, err := c.coll.UpdateOne(ctx, filterDoc(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return domain.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// DeleteOne implements [domain.Collection].
func (c *Collection) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, filterDoc(filter))
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// CountDocuments implements [domain.Collection].
func (c *Collection) CountDocuments(ctx context.Context, filter domain.Filter) (int64, error) {
	return c.coll.CountDocuments(ctx, filterDoc(filter))
}

// Drop implements [domain.Dropper].
func (c *Collection) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}
