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
	"github.com/gej4/ML-project-for-players-skill-estimation/pkg/logger"
)

// bpSolver holds the transient state of one belief propagation run. Message
// tables are owned exclusively by the run that created them; a fresh solver
// is built per invocation so concurrent runs over the same graph never share
// state.
type bpSolver struct {
	graph      *factorgraph.Graph
	factors    []*factor.Factor
	scopes     [][]factor.Variable
	factorsOf  map[int][]int // variable id -> indices into factors
	posOf      []map[int]int // per factor: variable id -> scope position
	recoveries int
}

// bpMessages holds one full set of directed messages, indexed by factor and
// by the variable's position in that factor's scope.
type bpMessages struct {
	fv [][][]float64 // factor -> variable
	vf [][][]float64 // variable -> factor
}

// RunBP runs sum-product loopy belief propagation on the graph.
//
// The schedule is synchronous: every message of a sweep is computed from the
// previous sweep's messages, then the whole set is swapped in at once. All
// messages start uniform. After each sweep the maximum elementwise change
// (L-infinity) across all messages is compared against cfg.Tolerance;
// reaching cfg.MaxIterations without converging still returns the current
// best-effort beliefs with Converged=false, since loopy BP carries no
// convergence guarantee on graphs with cycles.
//
// Numerical degeneracies never abort a run: any message or belief whose
// entries all cancel to zero is replaced by the uniform distribution and
// counted in Result.Recoveries.
func RunBP(g *factorgraph.Graph, cfg Config) *Result {
	cfg = cfg.withDefaults()
	start := time.Now()

	runID := uuid.New().String()
	log := runLogger(cfg, runID, BeliefPropagation)
	log.WithFields(logrus.Fields{
		"factors":        len(g.Factors()),
		"variables":      g.VariableCount(),
		"max_iterations": cfg.MaxIterations,
		"tolerance":      cfg.Tolerance,
	}).Info("Starting belief propagation")

	solver := newBPSolver(g)
	cur := solver.uniformMessages()

	iterations := 0
	converged := false
	delta := math.Inf(1)
	for it := 1; it <= cfg.MaxIterations; it++ {
		var next *bpMessages
		next, delta = solver.sweep(cur)
		cur = next
		iterations = it

		log.WithFields(logrus.Fields{
			"iteration": it,
			"max_delta": delta,
		}).Debug("Completed message sweep")

		if delta < cfg.Tolerance {
			converged = true
			break
		}
	}

	beliefs := solver.beliefs(cur)
	logZ := solver.betheLogZ(cur, beliefs)

	result := &Result{
		Beliefs:    beliefs,
		LogZ:       logZ,
		Iterations: iterations,
		Converged:  converged,
		FinalDelta: delta,
		Recoveries: solver.recoveries,
		SolveTime:  time.Since(start).Milliseconds(),
	}

	if solver.recoveries > 0 {
		log.WithField("zero_mass_recoveries", solver.recoveries).Warn("Zero-mass vectors were replaced by uniform distributions")
	}
	log.WithFields(logrus.Fields{
		"iterations": result.Iterations,
		"converged":  result.Converged,
		"log_z":      result.LogZ,
		"time_ms":    result.SolveTime,
	}).Info("Belief propagation completed")

	return result
}

func runLogger(cfg Config, runID string, alg Algorithm) *logrus.Entry {
	if cfg.Logger != nil {
		return cfg.Logger.WithFields(logrus.Fields{
			"run_id":    runID,
			"algorithm": string(alg),
		})
	}
	return logger.WithRunContext(runID, string(alg))
}

func newBPSolver(g *factorgraph.Graph) *bpSolver {
	factors := g.Factors()
	s := &bpSolver{
		graph:     g,
		factors:   factors,
		scopes:    make([][]factor.Variable, len(factors)),
		factorsOf: make(map[int][]int),
		posOf:     make([]map[int]int, len(factors)),
	}
	for fi, f := range factors {
		scope := f.Scope()
		s.scopes[fi] = scope
		s.posOf[fi] = make(map[int]int, len(scope))
		for p, v := range scope {
			s.posOf[fi][v.ID] = p
			s.factorsOf[v.ID] = append(s.factorsOf[v.ID], fi)
		}
	}
	return s
}

func (s *bpSolver) uniformMessages() *bpMessages {
	msgs := &bpMessages{
		fv: make([][][]float64, len(s.factors)),
		vf: make([][][]float64, len(s.factors)),
	}
	for fi, scope := range s.scopes {
		msgs.fv[fi] = make([][]float64, len(scope))
		msgs.vf[fi] = make([][]float64, len(scope))
		for p, v := range scope {
			msgs.fv[fi][p] = uniform(v.Card)
			msgs.vf[fi][p] = uniform(v.Card)
		}
	}
	return msgs
}

// sweep computes a full new message set from the current one and returns it
// along with the maximum elementwise change across all messages.
func (s *bpSolver) sweep(cur *bpMessages) (*bpMessages, float64) {
	next := s.uniformMessages()

	// Variable -> factor: product of the previous sweep's factor -> variable
	// messages from every other neighboring factor. A variable whose only
	// neighbor is the receiving factor sends the uniform message.
	for fi, scope := range s.scopes {
		for p, v := range scope {
			m := next.vf[fi][p]
			for k := range m {
				m[k] = 1
			}
			for _, gi := range s.factorsOf[v.ID] {
				if gi == fi {
					continue
				}
				floats.Mul(m, cur.fv[gi][s.posOf[gi][v.ID]])
			}
			if normalize(m) {
				s.recoveries++
			}
		}
	}

	// Factor -> variable: factor table times the previous sweep's incoming
	// messages from every other scope variable, marginalized to the target.
	for fi, f := range s.factors {
		scope := s.scopes[fi]
		for p := range scope {
			work := f.Table()
			for q := range scope {
				if q == p {
					continue
				}
				mulAxis(work, scope, q, cur.vf[fi][q])
			}
			m := sumToAxis(work, scope, p)
			if normalize(m) {
				s.recoveries++
			}
			copy(next.fv[fi][p], m)
		}
	}

	delta := 0.0
	inf := math.Inf(1)
	for fi := range s.factors {
		for p := range s.scopes[fi] {
			delta = math.Max(delta, floats.Distance(next.fv[fi][p], cur.fv[fi][p], inf))
			delta = math.Max(delta, floats.Distance(next.vf[fi][p], cur.vf[fi][p], inf))
		}
	}
	return next, delta
}

// beliefs computes each variable's marginal estimate: the normalized product
// of all incoming factor -> variable messages. Unary prior factors are
// ordinary neighbors here, so a standalone prior contributes like any other
// incoming message.
func (s *bpSolver) beliefs(msgs *bpMessages) map[int][]float64 {
	out := make(map[int][]float64, s.graph.VariableCount())
	for _, v := range s.graph.Variables() {
		b := make([]float64, v.Card)
		for k := range b {
			b[k] = 1
		}
		for _, fi := range s.factorsOf[v.ID] {
			floats.Mul(b, msgs.fv[fi][s.posOf[fi][v.ID]])
		}
		if normalize(b) {
			s.recoveries++
		}
		out[v.ID] = b
	}
	return out
}

// betheLogZ evaluates the Bethe free-energy approximation of the log
// partition function from the final messages:
//
//	lnZ = sum_f -KL(b_f || table_f) + sum_v (1 - degree(v)) * H(b_v)
//
// where b_f is the factor's local belief (its table times all incoming
// variable messages, normalized) and b_v the variable belief. Exact on
// tree-structured graphs.
func (s *bpSolver) betheLogZ(msgs *bpMessages, beliefs map[int][]float64) float64 {
	lnZ := 0.0
	for fi, f := range s.factors {
		scope := s.scopes[fi]
		bf := f.Table()
		for p := range scope {
			mulAxis(bf, scope, p, msgs.vf[fi][p])
		}
		if normalize(bf) {
			s.recoveries++
		}
		lnZ -= stat.KullbackLeibler(bf, f.Table())
	}
	for _, v := range s.graph.Variables() {
		degree := len(s.factorsOf[v.ID])
		lnZ += float64(1-degree) * stat.Entropy(beliefs[v.ID])
	}
	return lnZ
}

// mulAxis multiplies msg into the table along one scope axis, broadcasting
// over all other axes.
func mulAxis(table []float64, scope []factor.Variable, axis int, msg []float64) {
	stride := axisStride(scope, axis)
	card := scope[axis].Card
	for i := range table {
		table[i] *= msg[(i/stride)%card]
	}
}

// sumToAxis marginalizes the table down to one scope axis.
func sumToAxis(table []float64, scope []factor.Variable, axis int) []float64 {
	stride := axisStride(scope, axis)
	card := scope[axis].Card
	out := make([]float64, card)
	for i, x := range table {
		out[(i/stride)%card] += x
	}
	return out
}

// axisStride is the flat-index stride of one scope position in a row-major
// table whose last variable varies fastest.
func axisStride(scope []factor.Variable, axis int) int {
	stride := 1
	for k := len(scope) - 1; k > axis; k-- {
		stride *= scope[k].Card
	}
	return stride
}

func uniform(card int) []float64 {
	m := make([]float64, card)
	u := 1.0 / float64(card)
	for k := range m {
		m[k] = u
	}
	return m
}

// normalize scales v in place to sum to one. A zero-mass vector carries no
// usable information (every joint combination it summarizes had probability
// zero), so it is replaced by the uniform distribution; the return value
// reports that recovery so callers can count it.
func normalize(v []float64) bool {
	s := floats.Sum(v)
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 1) {
		u := 1.0 / float64(len(v))
		for k := range v {
			v[k] = u
		}
		return true
	}
	floats.Scale(1/s, v)
	return false
}
