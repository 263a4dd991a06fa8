package simulator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoSystem is returned by Run when no energy system has been assigned.
	ErrNoSystem = errors.New("no energy system assigned")

	// ErrNotRun is returned when the net capacity matrix is requested
	// before a successful Run.
	ErrNotRun = errors.New("simulation has not been run")
)

// InvalidWindowError is returned when the simulation window is degenerate.
type InvalidWindowError struct {
	Start, End time.Time
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window: start %s not before end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// MissingCoverageError is returned when a unit's time series leaves no
// overlap with the requested simulation window.
type MissingCoverageError struct {
	UnitID     int
	Start, End time.Time
}

func (e *MissingCoverageError) Error() string {
	return fmt.Sprintf("unit %d has no time series coverage within window [%s, %s)",
		e.UnitID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}
