// Package elcc computes effective load-carrying capability: the constant
// demand increment, in MW, that an added resource can carry while keeping a
// chosen adequacy metric at the base system's level. The search is a
// bisection over added demand; it is monotone because more demand shifts
// the net capacity matrix downward, and the shared seed makes every
// iteration a paired-sample comparison against the base run.
package elcc

import (
	"fmt"
	"log/slog"

	"resource_adequacy/internal/adequacy"
	"resource_adequacy/internal/model"
	"resource_adequacy/internal/simulator"
	"resource_adequacy/internal/timeseries"
)

// State tracks the solver's lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateEvaluating State = "evaluating"
	StateBisecting  State = "bisecting"
	StateConverged  State = "converged"
	StateExhausted  State = "exhausted"
)

const (
	defaultPrecisionMW   = 0.01
	defaultMaxIterations = 20
	defaultMetricTol     = 1e-9
)

// NotConvergedError reports bisection exhaustion. The embedded estimate and
// bounds are still usable; callers may treat this as a warning.
type NotConvergedError struct {
	EstimateMW float64
	LoMW       float64
	HiMW       float64
	Iterations int
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("elcc did not converge after %d iterations: estimate %.4f MW, bounds [%.4f, %.4f]",
		e.Iterations, e.EstimateMW, e.LoMW, e.HiMW)
}

// Iteration records one probe of the bisection: the constant demand added
// on top of the combined system, the resulting matrix, and the metric value.
type Iteration struct {
	AddedDemandMW float64
	Matrix        *timeseries.Matrix
	MetricValue   float64
}

// Solver evaluates capacity credit for candidate resource additions against
// a fixed base system. A solver owns its internal simulations and its
// iteration history; it is single-owner like a Simulation.
type Solver struct {
	base     *model.EnergySystem
	template *simulator.Simulation
	metric   adequacy.Metric

	precisionMW   float64
	maxIterations int
	metricTol     float64
	logger        *slog.Logger

	state      State
	baseMetric float64
	baseMatrix *timeseries.Matrix
	iterations []Iteration
}

// Option configures a Solver.
type Option func(*Solver)

// WithPrecision sets the bisection convergence width in MW.
func WithPrecision(mw float64) Option {
	return func(s *Solver) {
		if mw > 0 {
			s.precisionMW = mw
		}
	}
}

// WithMaxIterations bounds the bisection loop.
func WithMaxIterations(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithMetricTolerance sets the band within which two metric values are
// considered equal.
func WithMetricTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol >= 0 {
			s.metricTol = tol
		}
	}
}

// WithLogger attaches a logger for per-iteration tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// New creates a solver for the given base system. The template supplies the
// window, trial count, and seed used by every internal simulation, so
// sampling noise cancels between the base run and each probe.
func New(base *model.EnergySystem, template *simulator.Simulation, metric adequacy.Metric, opts ...Option) *Solver {
	s := &Solver{
		base:          base,
		template:      template,
		metric:        metric,
		precisionMW:   defaultPrecisionMW,
		maxIterations: defaultMaxIterations,
		metricTol:     defaultMetricTol,
		state:         StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the solver's current lifecycle state.
func (s *Solver) State() State { return s.state }

// BaseMatrix returns the base system's net capacity matrix from the most
// recent Evaluate call.
func (s *Solver) BaseMatrix() *timeseries.Matrix { return s.baseMatrix }

// BaseMetric returns the base system's metric value from the most recent
// Evaluate call.
func (s *Solver) BaseMetric() float64 { return s.baseMetric }

// Iterations returns the recorded probes of the most recent Evaluate call,
// in evaluation order.
func (s *Solver) Iterations() []Iteration { return s.iterations }

// Evaluate returns the ELCC of the additional system in MW. On exhaustion
// it returns the midpoint estimate together with a *NotConvergedError.
func (s *Solver) Evaluate(additional *model.EnergySystem) (float64, error) {
	s.state = StateEvaluating
	s.iterations = nil
	s.baseMatrix = nil

	baseSim := s.template.Clone()
	baseSim.AssignEnergySystem(s.base)
	if err := baseSim.Run(); err != nil {
		s.state = StateIdle
		return 0, fmt.Errorf("base simulation: %w", err)
	}
	baseMetric, err := adequacy.Evaluate(s.metric, baseSim)
	if err != nil {
		s.state = StateIdle
		return 0, fmt.Errorf("base metric: %w", err)
	}
	s.baseMetric = baseMetric
	s.baseMatrix, _ = baseSim.Matrix()

	combined, probeID, err := s.combine(additional)
	if err != nil {
		s.state = StateIdle
		return 0, err
	}

	hi := additional.SystemCapacity()
	if hi <= 0 {
		s.state = StateConverged
		return 0, nil
	}
	lo := 0.0

	// If the addition still meets base adequacy under its full nameplate
	// as constant demand, the resource is a perfect capacity substitute.
	mHi, err := s.probe(combined, probeID, hi)
	if err != nil {
		s.state = StateIdle
		return 0, err
	}
	if mHi <= baseMetric+s.metricTol {
		s.state = StateConverged
		return hi, nil
	}

	iter := 0
	for ; iter < s.maxIterations && hi-lo > s.precisionMW; iter++ {
		s.state = StateBisecting
		mid := (lo + hi) / 2
		m, err := s.probe(combined, probeID, mid)
		if err != nil {
			s.state = StateIdle
			return 0, err
		}
		s.logIteration(iter, lo, hi, mid, m)

		switch {
		case m > baseMetric+s.metricTol:
			hi = mid
		case m < baseMetric-s.metricTol:
			lo = mid
		default:
			s.state = StateConverged
			return mid, nil
		}
	}

	estimate := (lo + hi) / 2
	if hi-lo <= s.precisionMW {
		s.state = StateConverged
		return estimate, nil
	}
	s.state = StateExhausted
	return estimate, &NotConvergedError{EstimateMW: estimate, LoMW: lo, HiMW: hi, Iterations: iter}
}

// combine merges the base and additional systems. Additional unit ids are
// remapped above the base id range; the returned probe id is reserved for
// the constant-demand unit added at each bisection step.
func (s *Solver) combine(additional *model.EnergySystem) (*model.EnergySystem, int, error) {
	b := model.NewBuilder()
	for _, u := range s.base.Units() {
		if err := b.AddUnit(u); err != nil {
			return nil, 0, err
		}
	}
	nextID := s.base.MaxID() + 1
	for _, u := range additional.Units() {
		if err := b.AddUnit(u.WithID(nextID)); err != nil {
			return nil, 0, err
		}
		nextID++
	}
	return b.Build(), nextID, nil
}

// probe simulates the combined system plus a constant demand of addedMW
// across the window, records the iteration, and returns the metric value.
func (s *Solver) probe(combined *model.EnergySystem, probeID int, addedMW float64) (float64, error) {
	sys := combined
	if addedMW > 0 {
		start, end := s.template.Window()
		hours := int(end.Sub(start).Hours())
		demand, err := model.NewDemandUnit(probeID, timeseries.Constant(start, hours, addedMW))
		if err != nil {
			return 0, err
		}
		b := model.NewBuilder()
		for _, u := range combined.Units() {
			if err := b.AddUnit(u); err != nil {
				return 0, err
			}
		}
		if err := b.AddUnit(demand); err != nil {
			return 0, err
		}
		sys = b.Build()
	}

	sim := s.template.Clone()
	sim.AssignEnergySystem(sys)
	if err := sim.Run(); err != nil {
		return 0, fmt.Errorf("probe at %.4f MW: %w", addedMW, err)
	}
	m, err := adequacy.Evaluate(s.metric, sim)
	if err != nil {
		return 0, fmt.Errorf("probe at %.4f MW: %w", addedMW, err)
	}
	mat, _ := sim.Matrix()
	s.iterations = append(s.iterations, Iteration{AddedDemandMW: addedMW, Matrix: mat, MetricValue: m})
	return m, nil
}

func (s *Solver) logIteration(iter int, lo, hi, mid, m float64) {
	if s.logger == nil {
		return
	}
	s.logger.Debug("bisection step",
		"iteration", iter,
		"lo_mw", lo,
		"hi_mw", hi,
		"mid_mw", mid,
		"metric", string(s.metric),
		"value", m,
		"base_value", s.baseMetric,
	)
}
