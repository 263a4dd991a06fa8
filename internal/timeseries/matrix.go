package timeseries

import (
	"math"
	"time"
)

// Matrix is a dense hour × trial matrix of net capacity values (MW) on the
// same implicit hourly grid as Series. Storage is trial-major so each trial
// is a contiguous row, which is what per-trial dispatch and reductions scan.
type Matrix struct {
	start  time.Time
	hours  int
	trials int
	data   []float64
}

// NewMatrix allocates a zero-filled matrix for the given window and trial count.
func NewMatrix(start time.Time, hours, trials int) *Matrix {
	return &Matrix{
		start:  start,
		hours:  hours,
		trials: trials,
		data:   make([]float64, hours*trials),
	}
}

// Start returns the first hour of the matrix's window.
func (m *Matrix) Start() time.Time { return m.start }

// Hours returns the length of the time axis.
func (m *Matrix) Hours() int { return m.hours }

// Trials returns the length of the trial axis.
func (m *Matrix) Trials() int { return m.trials }

// Time returns the timestamp of hour h.
func (m *Matrix) Time(h int) time.Time { return m.start.Add(time.Duration(h) * time.Hour) }

// At returns the value at (hour, trial).
func (m *Matrix) At(h, t int) float64 { return m.data[t*m.hours+h] }

// Set stores a value at (hour, trial).
func (m *Matrix) Set(h, t int, v float64) { m.data[t*m.hours+h] = v }

// Trial returns the live row for trial t. Mutations write through.
func (m *Matrix) Trial(t int) []float64 { return m.data[t*m.hours : (t+1)*m.hours] }

// AddProfile adds an hourly profile to every trial (a column broadcast).
func (m *Matrix) AddProfile(profile []float64) {
	for t := 0; t < m.trials; t++ {
		row := m.Trial(t)
		for h, v := range profile {
			row[h] += v
		}
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.start, m.hours, m.trials)
	copy(c.data, m.data)
	return c
}

// HasNaN reports whether any cell is NaN.
func (m *Matrix) HasNaN() bool {
	for _, v := range m.data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Equal reports bitwise equality of shape, window, and values.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || !m.start.Equal(other.start) || m.hours != other.hours || m.trials != other.trials {
		return false
	}
	for i, v := range m.data {
		if math.Float64bits(v) != math.Float64bits(other.data[i]) {
			return false
		}
	}
	return true
}
