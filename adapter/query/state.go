// Package query contains the chainable builders that translate table-style
// queries into store-native filter and sort documents.
//
// Every chain call returns a new builder over a new [State]. Builders never
// contact the store until a terminal method (Single, Execute, Insert, an
// update or delete Eq) is called, so any builder can be branched, reused as a
// prefix or shared between goroutines.
package query

import (
	"slices"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// State is an immutable snapshot of the target collection, the accumulated
// predicates and the accumulated sort list.
type State struct {
	collection string
	predicates []domain.Predicate
	sorts      domain.Sort
}

// NewState returns an empty state bound to collection.
func NewState(collection string) State {
	return State{collection: collection}
}

// Collection returns the name of the target collection.
func (s State) Collection() string {
	return s.collection
}

// Predicates returns a copy of the accumulated predicates, in the order their
// fields were first filtered.
func (s State) Predicates() []domain.Predicate {
	return slices.Clone(s.predicates)
}

// Filter translates the predicates into a store-native filter document. An
// empty state translates to an empty, non-nil filter.
func (s State) Filter() domain.Filter {
	f := make(domain.Filter, len(s.predicates))
	for _, p := range s.predicates {
		f[p.Field] = p.Native()
	}
	return f
}

// Sort returns a copy of the accumulated sort list.
func (s State) Sort() domain.Sort {
	return slices.Clone(s.sorts)
}

// withPredicate returns a new state holding p. A predicate already set on
// the same field is replaced in place.
func (s State) withPredicate(p domain.Predicate) State {
	preds := slices.Clone(s.predicates)
	if i := slices.IndexFunc(preds, func(q domain.Predicate) bool { return q.Field == p.Field }); i >= 0 {
		preds[i] = p
	} else {
		preds = append(preds, p)
	}
	s.predicates = preds
	return s
}

// withSort returns a new state with field appended to the sort list.
func (s State) withSort(field string, ascending bool) State {
	order := domain.Descending
	if ascending {
		order = domain.Ascending
	}
	sorts := make(domain.Sort, len(s.sorts), len(s.sorts)+1)
	copy(sorts, s.sorts)
	s.sorts = append(sorts, domain.SortName{Key: field, Order: order})
	return s
}
