package inference

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factor"
	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/factorgraph"
)

// logOfZero stands in for ln(0) in expected-log-factor sums so that
// coordinate updates stay finite. After exp-normalization a level carrying
// this penalty ends up with numerically zero mass, which is the intended
// limit behavior for zero-probability table entries.
const logOfZero = -700.0

// RunMeanField runs naive mean-field (NMF) coordinate ascent on the graph.
//
// The joint is approximated as a full product of independent per-variable
// beliefs. Each update sets one variable's belief to the normalized
// exponential of its expected log-factor contributions under all other
// variables' current beliefs, holding those fixed; updates apply in place as
// soon as they are computed (the schedule is asynchronous by nature, since
// coordinate ascent feeds each update into the next). Convergence uses the
// maximum elementwise belief change (L-infinity) against cfg.Tolerance.
//
// This is a different, cheaper approximation than loopy BP, not a redundant
// implementation of it; the two are not expected to agree bit-for-bit.
// Result.LogZ is the variational lower bound on the true log evidence.
func RunMeanField(g *factorgraph.Graph, cfg Config) *Result {
	cfg = cfg.withDefaults()
	start := time.Now()

	runID := uuid.New().String()
	log := runLogger(cfg, runID, MeanField)
	log.WithFields(logrus.Fields{
		"factors":        len(g.Factors()),
		"variables":      g.VariableCount(),
		"max_iterations": cfg.MaxIterations,
		"tolerance":      cfg.Tolerance,
	}).Info("Starting mean-field inference")

	solver := newBPSolver(g)
	logTables := make([][]float64, len(solver.factors))
	for fi, f := range solver.factors {
		lt := f.Table()
		for i, x := range lt {
			if x > 0 {
				lt[i] = math.Log(x)
			} else {
				lt[i] = logOfZero
			}
		}
		logTables[fi] = lt
	}

	vars := g.Variables()
	beliefs := make(map[int][]float64, len(vars))
	for _, v := range vars {
		beliefs[v.ID] = uniform(v.Card)
	}

	iterations := 0
	converged := false
	delta := math.Inf(1)
	inf := math.Inf(1)
	for it := 1; it <= cfg.MaxIterations; it++ {
		delta = 0
		for _, v := range vars {
			score := make([]float64, v.Card)
			for _, fi := range solver.factorsOf[v.ID] {
				scope := solver.scopes[fi]
				p := solver.posOf[fi][v.ID]
				assign := make([]int, len(scope))
				for _, lt := range logTables[fi] {
					w := 1.0
					for q, u := range scope {
						if q == p {
							continue
						}
						w *= beliefs[u.ID][assign[q]]
					}
					score[assign[p]] += w * lt
					nextAssignment(assign, scope)
				}
			}

			// Exp-normalize with the max subtracted so the largest term is
			// exp(0) and the vector can never underflow to all zeros.
			m := floats.Max(score)
			b := make([]float64, v.Card)
			for k, sc := range score {
				b[k] = math.Exp(sc - m)
			}
			normalize(b)

			delta = math.Max(delta, floats.Distance(b, beliefs[v.ID], inf))
			beliefs[v.ID] = b
		}
		iterations = it

		log.WithFields(logrus.Fields{
			"iteration": it,
			"max_delta": delta,
		}).Debug("Completed coordinate sweep")

		if delta < cfg.Tolerance {
			converged = true
			break
		}
	}

	result := &Result{
		Beliefs:    beliefs,
		LogZ:       meanFieldBound(solver, logTables, beliefs),
		Iterations: iterations,
		Converged:  converged,
		FinalDelta: delta,
		SolveTime:  time.Since(start).Milliseconds(),
	}

	log.WithFields(logrus.Fields{
		"iterations": result.Iterations,
		"converged":  result.Converged,
		"log_z":      result.LogZ,
		"time_ms":    result.SolveTime,
	}).Info("Mean-field inference completed")

	return result
}

// meanFieldBound is the variational lower bound on ln Z under the factorized
// beliefs: sum_f E[ln f] + sum_v H(b_v).
func meanFieldBound(solver *bpSolver, logTables [][]float64, beliefs map[int][]float64) float64 {
	bound := 0.0
	for fi, scope := range solver.scopes {
		assign := make([]int, len(scope))
		for _, lt := range logTables[fi] {
			w := 1.0
			for q, u := range scope {
				w *= beliefs[u.ID][assign[q]]
			}
			bound += w * lt
			nextAssignment(assign, scope)
		}
	}
	for _, v := range solver.graph.Variables() {
		bound += stat.Entropy(beliefs[v.ID])
	}
	return bound
}

// nextAssignment advances a mixed-radix assignment over the scope, last
// variable fastest, matching the factor table layout.
func nextAssignment(assign []int, scope []factor.Variable) {
	for k := len(scope) - 1; k >= 0; k-- {
		assign[k]++
		if assign[k] < scope[k].Card {
			return
		}
		assign[k] = 0
	}
}
