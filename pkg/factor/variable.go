package factor

import (
	"fmt"
	"sort"
)

// Variable is a discrete random variable: an integer identity plus the
// number of values it can take. Variables are immutable value types and are
// compared by ID; the same ID must never exist with two different domain
// sizes.
type Variable struct {
	ID   int
	Card int
}

// Variables is the owned collection of all declared variables for one model.
// It enforces that an id is never redeclared with a divergent domain size.
type Variables struct {
	byID map[int]Variable
}

// NewVariables creates an empty variable registry.
func NewVariables() *Variables {
	return &Variables{byID: make(map[int]Variable)}
}

// Declare registers a variable with the given id and domain size. Declaring
// the same id again with the same domain size returns the existing variable;
// a different domain size is an error.
func (vs *Variables) Declare(id, card int) (Variable, error) {
	if card <= 0 {
		return Variable{}, fmt.Errorf("declare variable %d with domain size %d: %w", id, card, ErrInvalidDomain)
	}
	if existing, ok := vs.byID[id]; ok {
		if existing.Card != card {
			return Variable{}, fmt.Errorf("declare variable %d with domain size %d (was %d): %w", id, card, existing.Card, ErrDuplicateID)
		}
		return existing, nil
	}
	v := Variable{ID: id, Card: card}
	vs.byID[id] = v
	return v, nil
}

// Get looks up a declared variable by id.
func (vs *Variables) Get(id int) (Variable, bool) {
	v, ok := vs.byID[id]
	return v, ok
}

// Len reports how many variables have been declared.
func (vs *Variables) Len() int {
	return len(vs.byID)
}

// All returns the declared variables sorted by id.
func (vs *Variables) All() []Variable {
	out := make([]Variable, 0, len(vs.byID))
	for _, v := range vs.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
