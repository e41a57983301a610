// Package skill assembles discrete skill-estimation models from pairwise
// game outcomes. One variable per player (a latent skill level out of K),
// one unary prior factor per player, one pairwise likelihood factor per
// game, with a logistic win-probability table over level differences. The
// resulting graph feeds the inference package and the beliefs come back as
// per-player ratings usable for ranking and match prediction.
package skill

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factor"
	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factorgraph"
)

var (
	// ErrInvalidOutcome is returned for a game outcome other than +1 or -1.
	ErrInvalidOutcome = errors.New("game outcome must be +1 or -1")
	// ErrSelfGame is returned for a game where a player faces themselves.
	ErrSelfGame = errors.New("game players must be distinct")
	// ErrNoGames is returned when a model is built from an empty game list.
	ErrNoGames = errors.New("no games provided")
)

// Outcome values for Game.
const (
	WinA  = +1 // player A beat player B
	LossA = -1 // player A lost to player B
)

// Game is one observed pairwise outcome between two players.
type Game struct {
	A       int `json:"a"`
	B       int `json:"b"`
	Outcome int `json:"outcome"` // +1: A beat B, -1: A lost to B
}

// Config describes the skill model.
type Config struct {
	// Levels is the number of discrete skill levels per player.
	Levels int `json:"levels"`
	// Scale controls how sharply a level difference translates into a win
	// probability. Scale 0 makes every game a coin flip and carries no
	// information about skill.
	Scale float64 `json:"scale"`
	// Prior is the per-player unary prior over levels; uniform when nil.
	// Entries need not sum to one but must be non-negative and of length
	// Levels.
	Prior []float64 `json:"prior,omitempty"`
}

// DefaultConfig returns a ten-level model with a moderate logistic scale.
func DefaultConfig() Config {
	return Config{Levels: 10, Scale: 0.3}
}

// WinProbTable builds the logistic win-probability lookup table:
// table[i][j] is the probability that a player at level i beats a player at
// level j, sigma(scale * (i - j)). Entries are strictly inside (0, 1).
func WinProbTable(levels int, scale float64) [][]float64 {
	table := make([][]float64, levels)
	for i := range table {
		row := make([]float64, levels)
		for j := range row {
			row[j] = logistic(scale * float64(i-j))
		}
		table[i] = row
	}
	return table
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// BuildGraph turns a game list into a factor graph: one variable and one
// unary prior factor per distinct player id, one pairwise likelihood factor
// per game. Pairwise factors are oriented with the lower-id player first.
// The caller usually minimizes the graph before inference so repeated games
// between the same pair collapse into one factor.
func BuildGraph(games []Game, cfg Config) (*factorgraph.Graph, error) {
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	if cfg.Levels <= 0 {
		return nil, fmt.Errorf("model with %d levels: %w", cfg.Levels, factor.ErrInvalidDomain)
	}

	vars := factor.NewVariables()
	playerIDs := make([]int, 0, 2*len(games))
	seen := make(map[int]bool)
	for gi, game := range games {
		if game.Outcome != WinA && game.Outcome != LossA {
			return nil, fmt.Errorf("game %d has outcome %d: %w", gi, game.Outcome, ErrInvalidOutcome)
		}
		if game.A == game.B {
			return nil, fmt.Errorf("game %d pits player %d against themselves: %w", gi, game.A, ErrSelfGame)
		}
		for _, id := range [2]int{game.A, game.B} {
			if !seen[id] {
				seen[id] = true
				playerIDs = append(playerIDs, id)
			}
			if _, err := vars.Declare(id, cfg.Levels); err != nil {
				return nil, err
			}
		}
	}
	sort.Ints(playerIDs)

	prior := cfg.Prior
	if prior == nil {
		prior = uniformPrior(cfg.Levels)
	} else if len(prior) != cfg.Levels {
		return nil, fmt.Errorf("prior has %d entries, model has %d levels: %w", len(prior), cfg.Levels, factor.ErrShapeMismatch)
	}

	pwin := WinProbTable(cfg.Levels, cfg.Scale)

	factors := make([]*factor.Factor, 0, len(playerIDs)+len(games))
	for _, id := range playerIDs {
		v, _ := vars.Get(id)
		f, err := factor.New([]factor.Variable{v}, prior)
		if err != nil {
			return nil, fmt.Errorf("prior for player %d: %w", id, err)
		}
		factors = append(factors, f)
	}

	for gi, game := range games {
		f, err := gameFactor(vars, game, pwin, cfg.Levels)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", gi, err)
		}
		factors = append(factors, f)
	}

	return factorgraph.Build(factors)
}

// gameFactor builds the pairwise likelihood of one observed outcome. The
// scope is ordered (lower id, higher id); the table entry at levels (i, j)
// is the probability the observed winner wins when the lower-id player sits
// at level i and the higher-id player at level j.
func gameFactor(vars *factor.Variables, game Game, pwin [][]float64, levels int) (*factor.Factor, error) {
	winner, loser := game.A, game.B
	if game.Outcome == LossA {
		winner, loser = game.B, game.A
	}

	lo, hi := winner, loser
	if lo > hi {
		lo, hi = hi, lo
	}
	loVar, _ := vars.Get(lo)
	hiVar, _ := vars.Get(hi)

	table := make([]float64, levels*levels)
	for i := 0; i < levels; i++ {
		for j := 0; j < levels; j++ {
			if winner == lo {
				table[i*levels+j] = pwin[i][j]
			} else {
				table[i*levels+j] = pwin[j][i]
			}
		}
	}
	return factor.New([]factor.Variable{loVar, hiVar}, table)
}

func uniformPrior(levels int) []float64 {
	prior := make([]float64, levels)
	u := 1.0 / float64(levels)
	for k := range prior {
		prior[k] = u
	}
	return prior
}
