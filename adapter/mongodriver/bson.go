package mongodriver

import (
	"slices"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// filterDoc converts a filter into a bson.D ordered by field name, so the
// same filter always produces the same wire document.
func filterDoc(filter domain.Filter) bson.D {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		v := filter[k]
		if sub, ok := v.(map[string]any); ok {
			v = filterDoc(sub)
		}
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	return doc
}

// sortDoc converts a sort list into a bson.D keeping its order. Any positive
// order is ascending and any other value descending.
func sortDoc(sort domain.Sort) bson.D {
	doc := make(bson.D, 0, len(sort))
	for _, s := range sort {
		dir := -1
		if s.Order > 0 {
			dir = 1
		}
		doc = append(doc, bson.E{Key: s.Key, Value: dir})
	}
	return doc
}

// toRow converts a decoded document into plain Go maps and slices.
func toRow(doc bson.M) domain.Row {
	row := make(domain.Row, len(doc))
	for k, v := range doc {
		row[k] = fromBSON(v)
	}
	return row
}

func fromBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		return toRow(t)
	case bson.D:
		return toRow(t.Map())
	case bson.A:
		res := make([]any, len(t))
		for n, e := range t {
			res[n] = fromBSON(e)
		}
		return res
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
