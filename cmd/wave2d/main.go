// Command wave2d runs the explicit finite-difference 2D acoustic wave
// simulator and streams per-iteration field frames to a dense binary file.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dramalf/wave2d/internal/config"
	"github.com/dramalf/wave2d/internal/diag"
	"github.com/dramalf/wave2d/internal/driver"
	"github.com/dramalf/wave2d/internal/framestore"
)

func main() {
	cb, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}

	fmt.Printf("wave2d\n")
	fmt.Printf("  %-14s %d x %d\n", "Domain:", cb.M, cb.N)
	fmt.Printf("  %-14s %d x %d (%d tiles)\n", "Tile grid:", cb.Px, cb.Py, cb.Px*cb.Py)
	fmt.Printf("  %-14s %d\n", "Iterations:", cb.NIters)
	fmt.Printf("  %-14s %d object(s)\n", "Scene:", len(cb.Scene))
	if cb.NoComm {
		fmt.Printf("  %-14s disabled (debug)\n", "Halo exchange:")
	}
	fmt.Printf("  %-14s %s\n", "Output:", cb.OutputPath)

	writer, err := framestore.NewWriter(cb.OutputPath, cb.M, cb.N)
	if err != nil {
		log.Fatalf("Creating frame writer: %v", err)
	}

	reporter := diag.NewReporter(cb.StatsFreq)

	start := time.Now()
	stats, final, err := driver.Run(cb, writer, reporter)
	if err != nil {
		// Keep the frames already written: finalize the file with the
		// frame count reached so far before exiting.
		if ferr := writer.Finalize(); ferr != nil {
			log.Printf("Finalizing partial output: %v", ferr)
		}
		log.Fatalf("Simulation: %v", err)
	}

	if err := writer.Finalize(); err != nil {
		log.Fatalf("Finalizing output: %v", err)
	}

	if cb.SnapshotNPY != "" {
		if err := framestore.ExportNPY(cb.SnapshotNPY, cb.M, cb.N, final); err != nil {
			log.Fatalf("Exporting NumPy snapshot: %v", err)
		}
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fi, _ := os.Stat(cb.OutputPath)
	size := int64(0)
	if fi != nil {
		size = fi.Size()
	}
	fmt.Printf("Done: %d iterations, %d bytes, %v -> %s\n", stats.Iterations, size, elapsed, cb.OutputPath)
}
