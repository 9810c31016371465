package query

import "github.com/vinicius-lino-figueiredo/doctable/domain"

// filters is the chain surface shared by every builder. B is the builder kind
// returned by each call, so builders differ only in their terminal methods.
type filters[B any] struct {
	state State
	wrap  func(State) B
}

// Eq returns a new builder filtering field for equality with value.
func (f filters[B]) Eq(field string, value any) B {
	return f.with(field, domain.OpEq, value)
}

// Gte returns a new builder filtering field for values greater than or equal
// to value.
func (f filters[B]) Gte(field string, value any) B {
	return f.with(field, domain.OpGte, value)
}

// Gt returns a new builder filtering field for values greater than value.
func (f filters[B]) Gt(field string, value any) B {
	return f.with(field, domain.OpGt, value)
}

// Filter returns the store-native filter the builder would send.
func (f filters[B]) Filter() domain.Filter {
	return f.state.Filter()
}

// State returns the builder state.
func (f filters[B]) State() State {
	return f.state
}

func (f filters[B]) with(field string, op domain.Operator, value any) B {
	return f.wrap(f.state.withPredicate(domain.Predicate{Field: field, Operator: op, Value: value}))
}
