package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/inference"
)

// The reference scenario: player 0 beats 2 twice, 2 beats 1, 1 beats 0.
// Despite the cycle, the win/loss totals must rank 0 above 1 above 2.
func referenceGames() []Game {
	return []Game{
		{A: 0, B: 2, Outcome: WinA},
		{A: 0, B: 2, Outcome: WinA},
		{A: 1, B: 2, Outcome: LossA},
		{A: 0, B: 1, Outcome: LossA},
	}
}

func TestEstimate_ReferenceScenarioRanking(t *testing.T) {
	ratings, result, err := Estimate(referenceGames(), Config{Levels: 10, Scale: 0.3}, inference.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, ratings, 3)

	assert.True(t, result.Converged)
	assert.Equal(t, 0, ratings[0].PlayerID, "player 0 ranks highest")
	assert.Equal(t, 1, ratings[1].PlayerID, "player 1 ranks middle")
	assert.Equal(t, 2, ratings[2].PlayerID, "player 2 ranks lowest")
	assert.Greater(t, ratings[0].ExpectedLevel, ratings[1].ExpectedLevel)
	assert.Greater(t, ratings[1].ExpectedLevel, ratings[2].ExpectedLevel)
}

func TestEstimate_BeliefsAreDistributions(t *testing.T) {
	ratings, _, err := Estimate(referenceGames(), Config{Levels: 10, Scale: 0.3}, inference.DefaultConfig())
	require.NoError(t, err)

	for _, r := range ratings {
		require.Len(t, r.Belief, 10)
		sum := 0.0
		for _, x := range r.Belief {
			assert.GreaterOrEqual(t, x, 0.0)
			sum += x
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "belief of player %d", r.PlayerID)
	}
}

func TestEstimate_ZeroScaleIsUninformative(t *testing.T) {
	// Scale 0 makes every game a coin flip; no outcome can move any belief
	// away from uniform.
	ratings, _, err := Estimate(referenceGames(), Config{Levels: 10, Scale: 0}, inference.DefaultConfig())
	require.NoError(t, err)

	for _, r := range ratings {
		for _, x := range r.Belief {
			assert.InDelta(t, 0.1, x, 1e-9, "player %d", r.PlayerID)
		}
		assert.InDelta(t, 4.5, r.ExpectedLevel, 1e-9)
	}
}

func TestEstimate_MeanFieldVariant(t *testing.T) {
	cfg := inference.DefaultConfig()
	cfg.Algorithm = inference.MeanField

	ratings, result, err := Estimate(referenceGames(), Config{Levels: 10, Scale: 0.3}, cfg)
	require.NoError(t, err)
	require.Len(t, ratings, 3)
	assert.True(t, result.Converged)
	for _, r := range ratings {
		sum := 0.0
		for _, x := range r.Belief {
			sum += x
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestEstimate_PropagatesBuildErrors(t *testing.T) {
	_, _, err := Estimate(nil, DefaultConfig(), inference.DefaultConfig())
	assert.ErrorIs(t, err, ErrNoGames)
}

func TestPredictWin(t *testing.T) {
	ratings, _, err := Estimate(referenceGames(), Config{Levels: 10, Scale: 0.3}, inference.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, ratings, 3)

	best, worst := ratings[0], ratings[2]
	p := PredictWin(best, worst, 0.3)
	assert.Greater(t, p, 0.5, "the stronger player is favored")

	// The two sides of any matchup complement.
	q := PredictWin(worst, best, 0.3)
	assert.InDelta(t, 1.0, p+q, 1e-9)
}

func TestPredictWin_ZeroScale(t *testing.T) {
	uniform := PlayerRating{Belief: []float64{0.25, 0.25, 0.25, 0.25}}
	assert.InDelta(t, 0.5, PredictWin(uniform, uniform, 0), 1e-12)
}
