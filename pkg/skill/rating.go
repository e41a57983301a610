package skill

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/inference"
)

// PlayerRating is one player's estimated skill: the full marginal belief
// over levels plus its expected value, which is what rankings sort by.
type PlayerRating struct {
	PlayerID      int       `json:"player_id"`
	ExpectedLevel float64   `json:"expected_level"`
	Belief        []float64 `json:"belief"`
}

// Estimate builds the factor graph from the games, minimizes it (collapsing
// repeated pairings), runs the configured inference algorithm, and returns
// per-player ratings sorted by expected level, best first. The inference
// Result is returned alongside so the caller can inspect convergence
// diagnostics; an unconverged run still yields usable best-effort ratings.
func Estimate(games []Game, cfg Config, infCfg inference.Config) ([]PlayerRating, *inference.Result, error) {
	graph, err := BuildGraph(games, cfg)
	if err != nil {
		return nil, nil, err
	}
	graph.Minimize()

	result := inference.Run(graph, infCfg)

	ratings := make([]PlayerRating, 0, len(result.Beliefs))
	for id, belief := range result.Beliefs {
		ratings = append(ratings, PlayerRating{
			PlayerID:      id,
			ExpectedLevel: expectedLevel(belief),
			Belief:        belief,
		})
	}
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].ExpectedLevel != ratings[j].ExpectedLevel {
			return ratings[i].ExpectedLevel > ratings[j].ExpectedLevel
		}
		return ratings[i].PlayerID < ratings[j].PlayerID
	})
	return ratings, result, nil
}

func expectedLevel(belief []float64) float64 {
	levels := make([]float64, len(belief))
	for k := range levels {
		levels[k] = float64(k)
	}
	return floats.Dot(belief, levels)
}

// PredictWin estimates the probability that player a beats player b in a
// future game, marginalizing the logistic win model over both players'
// beliefs: sum_{i,j} bA[i] * bB[j] * sigma(scale * (i - j)).
func PredictWin(a, b PlayerRating, scale float64) float64 {
	p := 0.0
	for i, pa := range a.Belief {
		for j, pb := range b.Belief {
			p += pa * pb * logistic(scale*float64(i-j))
		}
	}
	return p
}
