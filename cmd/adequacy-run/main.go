// adequacy-run loads a saved energy system, runs the configured Monte Carlo
// simulation, and prints the requested adequacy metrics.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"resource_adequacy/internal/adequacy"
	"resource_adequacy/internal/config"
	"resource_adequacy/internal/store"
)

var metricLabels = map[adequacy.Metric]string{
	adequacy.ExpectedUnservedEnergy: "EUE (MWh)",
	adequacy.LossOfLoadHours:        "LOLH (h)",
	adequacy.LossOfLoadDays:         "LOLD (d)",
	adequacy.LossOfLoadFrequency:    "LOLF (#)",
}

func main() {
	configPath := flag.String("config", "study.yaml", "path to a study config file")
	flag.Parse()

	study, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Load study %q: %v", *configPath, err)
	}

	sys, err := store.Load(study.SystemDir)
	if err != nil {
		log.Fatalf("Load system %q: %v", study.SystemDir, err)
	}

	sim, err := study.Simulation()
	if err != nil {
		log.Fatalf("Build simulation: %v", err)
	}
	sim.AssignEnergySystem(sys)

	started := time.Now()
	if err := sim.Run(); err != nil {
		log.Fatalf("Run simulation: %v", err)
	}
	elapsed := time.Since(started)

	mat, err := sim.Matrix()
	if err != nil {
		log.Fatalf("Read matrix: %v", err)
	}
	fmt.Printf("System: %d units, %.1f MW installed\n", sys.Size(), sys.SystemCapacity())
	fmt.Printf("Window: %s .. %s (%d h, %d trials, seed %d) in %s\n",
		mat.Start().Format(time.RFC3339),
		mat.Time(mat.Hours()).Format(time.RFC3339),
		mat.Hours(), mat.Trials(), sim.Seed(), elapsed.Round(time.Millisecond))

	kinds, err := study.MetricKinds()
	if err != nil {
		log.Fatalf("Metrics: %v", err)
	}
	for _, kind := range kinds {
		value, err := adequacy.Evaluate(kind, sim)
		if err != nil {
			log.Fatalf("Evaluate %s: %v", kind, err)
		}
		fmt.Printf("%-12s %14.4f\n", metricLabels[kind], value)
	}
}
