package inference

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factor"
)

func TestRunMeanField_ExactForIndependentVariables(t *testing.T) {
	// With only unary factors the factorized assumption holds exactly, so
	// mean field must recover the true marginals and its bound must equal
	// the true log evidence.
	vs := factor.NewVariables()
	a, _ := vs.Declare(0, 2)
	b, _ := vs.Declare(1, 2)

	g := buildGraph(t,
		newFactor(t, []factor.Variable{a}, []float64{1, 3}),
		newFactor(t, []factor.Variable{b}, []float64{2, 2}),
	)

	res := RunMeanField(g, DefaultConfig())
	assert.True(t, res.Converged)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, res.Beliefs[0], 1e-9)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, res.Beliefs[1], 1e-9)
	assert.InDelta(t, math.Log(4)+math.Log(4), res.LogZ, 1e-9)
}

func TestRunMeanField_ProducesValidDistributions(t *testing.T) {
	g := chainGraph(t)

	res := RunMeanField(g, DefaultConfig())
	require.Len(t, res.Beliefs, 3)
	for id, belief := range res.Beliefs {
		assertDistribution(t, belief, id)
	}
	assert.False(t, math.IsNaN(res.LogZ))
}

func TestRunMeanField_BoundsExactLogZ(t *testing.T) {
	// The mean-field objective is a lower bound on the true log evidence.
	g := chainGraph(t)

	exact := RunExact(g)
	mf := RunMeanField(g, DefaultConfig())
	assert.LessOrEqual(t, mf.LogZ, exact.LogZ+1e-9)
}

func TestRunMeanField_SymmetricCycleStaysUniform(t *testing.T) {
	vs := factor.NewVariables()
	a, _ := vs.Declare(0, 2)
	b, _ := vs.Declare(1, 2)
	c, _ := vs.Declare(2, 2)

	attract := []float64{2, 1, 1, 2}
	g := buildGraph(t,
		newFactor(t, []factor.Variable{a, b}, attract),
		newFactor(t, []factor.Variable{b, c}, attract),
		newFactor(t, []factor.Variable{a, c}, attract),
	)

	res := RunMeanField(g, DefaultConfig())
	assert.True(t, res.Converged)
	for id, belief := range res.Beliefs {
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, belief, 1e-9, "variable %d", id)
	}
}
