package simulator

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"resource_adequacy/internal/model"
	"resource_adequacy/internal/timeseries"
)

// Simulation runs Monte Carlo trials of hourly net system capacity over a
// half-open window [start, end). A simulation owns its matrix; the assigned
// system is read-only and shareable.
type Simulation struct {
	start   time.Time
	end     time.Time
	trials  int
	seed    uint64
	workers int

	system *model.EnergySystem
	matrix *timeseries.Matrix
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed fixes the master RNG seed. Two runs with the same seed and the
// same system produce bitwise-identical matrices.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// WithWorkers bounds the per-trial worker pool. The worker count never
// affects results, only wall-clock time.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a simulation for the window [start, end) with the given trial count.
func New(start, end time.Time, trials int, opts ...Option) *Simulation {
	s := &Simulation{
		start:   start,
		end:     end,
		trials:  trials,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clone returns an unrun simulation with the same window, trial count,
// seed, and worker bound, and no system assigned.
func (s *Simulation) Clone() *Simulation {
	return &Simulation{
		start:   s.start,
		end:     s.end,
		trials:  s.trials,
		seed:    s.seed,
		workers: s.workers,
	}
}

// Window returns the requested simulation window.
func (s *Simulation) Window() (start, end time.Time) { return s.start, s.end }

// Trials returns the configured trial count.
func (s *Simulation) Trials() int { return s.trials }

// Seed returns the master RNG seed.
func (s *Simulation) Seed() uint64 { return s.seed }

// AssignEnergySystem associates a system with the simulation and discards
// any previously computed matrix.
func (s *Simulation) AssignEnergySystem(sys *model.EnergySystem) {
	s.system = sys
	s.matrix = nil
}

// Matrix returns the net hourly capacity matrix computed by Run.
func (s *Simulation) Matrix() (*timeseries.Matrix, error) {
	if s.matrix == nil {
		return nil, ErrNotRun
	}
	return s.matrix, nil
}

// Run computes the net capacity matrix. Deterministic units are summed into
// an hourly profile broadcast over all trials, stochastic availability is
// sampled per (unit, hour, trial), and storage units are folded over each
// trial's profile in ascending id order. Running again recomputes an
// identical matrix.
func (s *Simulation) Run() error {
	s.matrix = nil
	if s.system == nil {
		return ErrNoSystem
	}
	if !s.start.Before(s.end) {
		return &InvalidWindowError{Start: s.start, End: s.end}
	}

	effStart, effEnd, err := s.effectiveWindow()
	if err != nil {
		return err
	}
	hours := int(effEnd.Sub(effStart) / time.Hour)
	mat := timeseries.NewMatrix(effStart, hours, s.trials)

	det := make([]float64, hours)
	for _, u := range s.system.UnitsByKind(model.UnitDemand) {
		demand, err := u.HourlyDemand.Slice(effStart, effEnd)
		if err != nil {
			return fmt.Errorf("unit %d: %w", u.ID, err)
		}
		for h := 0; h < hours; h++ {
			det[h] -= demand.At(h)
		}
	}
	for _, u := range s.system.UnitsByKind(model.UnitStatic) {
		capacity, err := u.HourlyCapacity.Slice(effStart, effEnd)
		if err != nil {
			return fmt.Errorf("unit %d: %w", u.ID, err)
		}
		for h := 0; h < hours; h++ {
			det[h] += capacity.At(h)
		}
	}

	type stochastic struct {
		id    int
		caps  []float64
		rates []float64
	}
	var stoch []stochastic
	for _, u := range s.system.UnitsByKind(model.UnitStochastic) {
		capacity, err := u.HourlyCapacity.Slice(effStart, effEnd)
		if err != nil {
			return fmt.Errorf("unit %d: %w", u.ID, err)
		}
		rate, err := u.HourlyForcedOutageRate.Slice(effStart, effEnd)
		if err != nil {
			return fmt.Errorf("unit %d: %w", u.ID, err)
		}
		stoch = append(stoch, stochastic{id: u.ID, caps: capacity.Values(), rates: rate.Values()})
	}

	storage := s.system.UnitsByKind(model.UnitStorage)

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for t := 0; t < s.trials; t++ {
		g.Go(func() error {
			row := mat.Trial(t)
			copy(row, det)
			for _, sc := range stoch {
				rng := unitStream(s.seed, sc.id, t)
				for h := 0; h < hours; h++ {
					if rng.Float64() >= sc.rates[h] {
						row[h] += sc.caps[h]
					}
				}
			}
			for _, su := range storage {
				dispatchStorage(su, row)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.matrix = mat
	return nil
}

// effectiveWindow intersects the requested window with every unit's series
// range. A unit that leaves no overlap is a coverage error.
func (s *Simulation) effectiveWindow() (time.Time, time.Time, error) {
	start, end := s.start, s.end
	for _, u := range s.system.Units() {
		uStart, uEnd, bounded := u.Window()
		if !bounded {
			continue
		}
		if uStart.After(start) {
			start = uStart
		}
		if uEnd.Before(end) {
			end = uEnd
		}
		if !start.Before(end) {
			return time.Time{}, time.Time{}, &MissingCoverageError{UnitID: u.ID, Start: s.start, End: s.end}
		}
	}
	return start, end, nil
}
