package inference

import (
	"math"
	"time"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factor"
	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factorgraph"
)

// RunExact computes exact marginals and the exact log partition function by
// materializing the full joint table and marginalizing it directly. Cost is
// exponential in the number of variables, so this is a correctness oracle
// for small and tree-structured graphs, never a performance path.
//
// A graph whose total mass is zero has no normalizable joint; LogZ comes
// back -Inf and every belief uniform.
func RunExact(g *factorgraph.Graph) *Result {
	start := time.Now()

	factors := g.Factors()
	if len(factors) == 0 {
		return &Result{
			Beliefs:   map[int][]float64{},
			LogZ:      0,
			Converged: true,
		}
	}

	joint := factors[0]
	for _, f := range factors[1:] {
		joint = factor.Product(joint, f)
	}

	scope := joint.Scope()
	beliefs := make(map[int][]float64, g.VariableCount())
	for _, v := range g.Variables() {
		others := make([]factor.Variable, 0, len(scope)-1)
		for _, u := range scope {
			if u.ID != v.ID {
				others = append(others, u)
			}
		}
		beliefs[v.ID] = factor.Marginalize(joint, others...).Normalized().Table()
	}

	return &Result{
		Beliefs:   beliefs,
		LogZ:      math.Log(joint.Sum()),
		Converged: true,
		SolveTime: time.Since(start).Milliseconds(),
	}
}
