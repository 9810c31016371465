package domain

// IDField is the field holding the unique id of every stored document.
const IDField = "_id"

// Row is a single document as returned by the store. A nil Row means absence.
type Row = map[string]any

// Filter is a store-native filter document, for example
// {"age": {"$gte": 18}, "active": true}.
type Filter = map[string]any

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// SortName represents a single field and the order which should be used to sort
// it. A positive Order value means ascending order and a negative value means
// descending order.
type SortName struct {
	Key   string
	Order int64
}

// Sort directions understood by every driver.
const (
	Ascending  int64 = 1
	Descending int64 = -1
)

// Operator identifies the comparison a [Predicate] applies to its field.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
)

// Predicate is one accumulated filter condition.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// Native returns the value this predicate contributes under its field in a
// store-native [Filter].
func (p Predicate) Native() any {
	switch p.Operator {
	case OpGte:
		return map[string]any{"$gte": p.Value}
	case OpGt:
		return map[string]any{"$gt": p.Value}
	default:
		return p.Value
	}
}

// InsertOneResult is the acknowledgement of [Collection.InsertOne].
type InsertOneResult struct {
	InsertedID any
}

// UpdateResult is the acknowledgement of [Collection.UpdateOne].
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// DeleteResult is the acknowledgement of [Collection.DeleteOne].
type DeleteResult struct {
	DeletedCount int64
}
