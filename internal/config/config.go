// Package config implements the ControlBlock: immutable simulation
// configuration assembled from an optional JSON config file and CLI flags
// (flags win over the file), plus the parsed scene of stimuli and
// obstacles.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
)

// Defaults mirror original_source/src/controlblock.rs.
const (
	DefaultM      = 100
	DefaultN      = 100
	DefaultNIters = 100
	DefaultPx     = 1
	DefaultPy     = 1
)

// ControlBlock is the immutable configuration shared (read-only) by every
// worker. Build one with Load.
type ControlBlock struct {
	M, N          int
	Px, Py        int
	NIters        int
	StatsFreq     int
	PlotFreq      int
	NoComm        bool
	AlphaKappa    float64
	BoundaryKappa float64

	ConfigPath  string
	OutputPath  string
	SnapshotNPY string
	Scene       []SceneItem
}

// fileConfig is the permissive shape of the JSON config file: only the keys
// the spec documents are recognized and any other top-level key is ignored.
// Each "objects" entry is kept as json.RawMessage so unrecognized scene
// object types can still be logged individually rather than failing the
// whole parse.
type fileConfig struct {
	N       *int              `json:"-n"`
	I       *int              `json:"-i"`
	Px      *int              `json:"-x"`
	Py      *int              `json:"-y"`
	Objects []json.RawMessage `json:"objects"`
}

// Load parses CLI flags out of args (in the style of flag.NewFlagSet, so it
// is safe to call from tests without touching the global flag.CommandLine),
// reads the config file named by -c if present, and merges the two with CLI
// values taking precedence. A missing or unreadable config file is treated
// as "use built-in defaults" (matching original_source's fallback to a null
// config); a config file that exists but fails to parse as JSON is a
// structural error and aborts before any worker starts.
func Load(args []string) (*ControlBlock, error) {
	fs := flag.NewFlagSet("wave2d", flag.ContinueOnError)

	configPath := fs.String("c", "", "path to a JSON config file")
	n := fs.Int("n", 0, "domain size N (also sets M=N); when omitted, the config file or default applies")
	niters := fs.Int("i", 0, "iteration count; when omitted, the config file or default applies")
	statsFreq := fs.Int("s", 0, "stats reporting cadence; 0 disables")
	plotFreq := fs.Int("p", 0, "plot cadence; 0 disables")
	px := fs.Int("x", 0, "tile grid width Px; when omitted, the config file or default applies")
	py := fs.Int("y", 0, "tile grid height Py; when omitted, the config file or default applies")
	noComm := fs.Bool("k", false, "disable halo exchange communication (debug)")
	outputPath := fs.String("o", "output.w2d", "output frame file")
	snapshotNPY := fs.String("snapshot-npy", "", "also export the final frame as a NumPy .npy file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cb := &ControlBlock{
		M: DefaultM, N: DefaultN,
		Px: DefaultPx, Py: DefaultPy,
		NIters:        DefaultNIters,
		AlphaKappa:    0.29,
		BoundaryKappa: 0.29,
		ConfigPath:    *configPath,
		OutputPath:    *outputPath,
		SnapshotNPY:   *snapshotNPY,
	}

	if *configPath != "" {
		if err := cb.applyFile(*configPath); err != nil {
			return nil, err
		}
	}

	// CLI flags override the file.
	if isSet(fs, "n") {
		cb.N = *n
		cb.M = *n
	}
	if isSet(fs, "i") {
		cb.NIters = *niters
	}
	if isSet(fs, "s") {
		cb.StatsFreq = *statsFreq
	}
	if isSet(fs, "p") {
		cb.PlotFreq = *plotFreq
	}
	if isSet(fs, "x") {
		cb.Px = *px
	}
	if isSet(fs, "y") {
		cb.Py = *py
	}
	if isSet(fs, "k") {
		cb.NoComm = *noComm
	}

	if err := cb.Validate(); err != nil {
		return nil, err
	}
	return cb, nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// applyFile reads the JSON config file and copies over the recognized keys.
// Unknown "objects" entries are logged and skipped, not fatal; a malformed
// file is fatal.
func (cb *ControlBlock) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: could not read %q (%v); using built-in defaults", path, err)
		return nil
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: %q is not valid JSON: %w", path, err)
	}

	if fc.N != nil {
		cb.N = *fc.N
		cb.M = *fc.N
	}
	if fc.I != nil {
		cb.NIters = *fc.I
	}
	if fc.Px != nil {
		cb.Px = *fc.Px
	}
	if fc.Py != nil {
		cb.Py = *fc.Py
	}

	scene, err := parseScene(fc.Objects)
	if err != nil {
		return err
	}
	cb.Scene = scene
	return nil
}

// Validate checks the geometry error class: the tile grid must be positive
// and must not yield a non-positive tile under the remainder-front rule.
func (cb *ControlBlock) Validate() error {
	if cb.Px <= 0 || cb.Py <= 0 {
		return fmt.Errorf("config: tile grid must be positive, got Px=%d Py=%d", cb.Px, cb.Py)
	}
	if cb.M <= 0 || cb.N <= 0 {
		return fmt.Errorf("config: domain extents must be positive, got M=%d N=%d", cb.M, cb.N)
	}
	if cb.NIters < 0 {
		return fmt.Errorf("config: niters must be >= 0, got %d", cb.NIters)
	}
	// Smallest possible tile (no remainder bonus) must still have at least
	// one interior row and column.
	if cb.N/cb.Px == 0 {
		return fmt.Errorf("config: Px=%d does not divide domain width N=%d into positive tiles", cb.Px, cb.N)
	}
	if cb.M/cb.Py == 0 {
		return fmt.Errorf("config: Py=%d does not divide domain height M=%d into positive tiles", cb.Py, cb.M)
	}
	return nil
}
