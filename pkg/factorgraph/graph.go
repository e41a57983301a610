// Package factorgraph links variables to the factors that reference them.
//
// A Graph is built once from a caller-supplied factor list, optionally
// minimized (merging duplicate-scope factors), and then treated as read-only
// by the inference engines.
package factorgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factor"
)

// ErrEmptyScope is returned when a graph is built from a factor with no
// variables in its scope.
var ErrEmptyScope = errors.New("factor has empty scope")

// Graph is the bipartite structure of variables and factors.
type Graph struct {
	factors []*factor.Factor
	vars    []factor.Variable
	adj     map[int][]*factor.Factor
}

// Build derives the variable/factor adjacency from a factor list. It fails
// if any factor has an empty scope or if two factors disagree on a
// variable's domain size. Build is all-or-nothing: on error no partially
// constructed graph is returned.
func Build(factors []*factor.Factor) (*Graph, error) {
	byID := make(map[int]factor.Variable)
	adj := make(map[int][]*factor.Factor)

	for i, f := range factors {
		if f.Arity() == 0 {
			return nil, fmt.Errorf("factor %d: %w", i, ErrEmptyScope)
		}
		for _, v := range f.Scope() {
			if existing, ok := byID[v.ID]; ok && existing.Card != v.Card {
				return nil, fmt.Errorf("factor %d sees variable %d with domain size %d (elsewhere %d): %w",
					i, v.ID, v.Card, existing.Card, factor.ErrDuplicateID)
			}
			byID[v.ID] = v
			adj[v.ID] = append(adj[v.ID], f)
		}
	}

	vars := make([]factor.Variable, 0, len(byID))
	for _, v := range byID {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].ID < vars[j].ID })

	return &Graph{
		factors: append([]*factor.Factor(nil), factors...),
		vars:    vars,
		adj:     adj,
	}, nil
}

// Minimize merges every group of factors whose scopes are identical as sets
// into a single factor equal to the elementwise product of the group,
// aligning variable order across the group. Repeated games between the same
// pair of players collapse this way without growing the graph. Minimize is
// idempotent; singleton groups are kept unchanged.
func (g *Graph) Minimize() {
	order := make([]string, 0, len(g.factors))
	groups := make(map[string][]*factor.Factor)
	for _, f := range g.factors {
		key := f.ScopeKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	merged := make([]*factor.Factor, 0, len(order))
	for _, key := range order {
		group := groups[key]
		f := group[0]
		for _, other := range group[1:] {
			// Same scope set, so Product is the aligned elementwise product.
			f = factor.Product(f, other)
		}
		merged = append(merged, f)
	}

	g.factors = merged
	adj := make(map[int][]*factor.Factor)
	for _, f := range g.factors {
		for _, v := range f.Scope() {
			adj[v.ID] = append(adj[v.ID], f)
		}
	}
	g.adj = adj
}

// VariableCount reports the number of distinct variables in the graph.
func (g *Graph) VariableCount() int {
	return len(g.vars)
}

// Variables returns the graph's variables sorted by id.
func (g *Graph) Variables() []factor.Variable {
	return append([]factor.Variable(nil), g.vars...)
}

// Factors returns the graph's factor list.
func (g *Graph) Factors() []*factor.Factor {
	return append([]*factor.Factor(nil), g.factors...)
}

// FactorsOf returns the factors neighboring the given variable.
func (g *Graph) FactorsOf(v factor.Variable) []*factor.Factor {
	return append([]*factor.Factor(nil), g.adj[v.ID]...)
}

// VariablesOf returns a factor's scope, i.e. its neighboring variables.
func (g *Graph) VariablesOf(f *factor.Factor) []factor.Variable {
	return f.Scope()
}

// Degree reports how many factors reference the given variable.
func (g *Graph) Degree(v factor.Variable) int {
	return len(g.adj[v.ID])
}
