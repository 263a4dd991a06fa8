// elcc-study evaluates the effective load-carrying capability of a
// candidate system against a base system, both saved with store.Save.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"resource_adequacy/internal/adequacy"
	"resource_adequacy/internal/config"
	"resource_adequacy/internal/elcc"
	"resource_adequacy/internal/store"
)

func main() {
	configPath := flag.String("config", "study.yaml", "path to a study config file with an elcc section")
	verbose := flag.Bool("v", false, "log bisection iterations")
	flag.Parse()

	study, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Load study %q: %v", *configPath, err)
	}
	if study.ELCC == nil {
		log.Fatalf("Study %q has no elcc section", *configPath)
	}

	base, err := store.Load(study.SystemDir)
	if err != nil {
		log.Fatalf("Load base system %q: %v", study.SystemDir, err)
	}
	candidate, err := store.Load(study.ELCC.CandidateDir)
	if err != nil {
		log.Fatalf("Load candidate system %q: %v", study.ELCC.CandidateDir, err)
	}

	template, err := study.Simulation()
	if err != nil {
		log.Fatalf("Build simulation: %v", err)
	}
	metric, err := adequacy.ParseMetric(study.ELCC.Metric)
	if err != nil {
		log.Fatalf("Metric: %v", err)
	}

	opts := []elcc.Option{
		elcc.WithPrecision(study.ELCC.PrecisionMW),
		elcc.WithMaxIterations(study.ELCC.MaxIterations),
	}
	if *verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, elcc.WithLogger(logger))
	}

	solver := elcc.New(base, template, metric, opts...)
	credit, err := solver.Evaluate(candidate)
	var ncErr *elcc.NotConvergedError
	if errors.As(err, &ncErr) {
		log.Printf("Warning: %v", ncErr)
	} else if err != nil {
		log.Fatalf("Evaluate: %v", err)
	}

	nameplate := candidate.SystemCapacity()
	fmt.Printf("Base %s: %.4f\n", metric, solver.BaseMetric())
	fmt.Printf("Candidate nameplate: %.2f MW\n", nameplate)
	fmt.Printf("ELCC: %.2f MW", credit)
	if nameplate > 0 {
		fmt.Printf(" (%.1f%% of nameplate)", 100*credit/nameplate)
	}
	fmt.Println()
	fmt.Printf("Solver state: %s after %d probes\n", solver.State(), len(solver.Iterations()))
}
