package driver

import (
	"fmt"
	"math"
	"testing"

	"github.com/dramalf/wave2d/internal/config"
)

type recordingWriter struct {
	frames [][]float64
	failAt int // -1 disables
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{failAt: -1}
}

func (w *recordingWriter) WriteFrame(iter int, data []float64) error {
	if w.failAt >= 0 && iter == w.failAt {
		return fmt.Errorf("simulated write failure at iter %d", iter)
	}
	frame := make([]float64, len(data))
	copy(frame, data)
	w.frames = append(w.frames, frame)
	return nil
}

func baseControlBlock() *config.ControlBlock {
	return &config.ControlBlock{
		M: 10, N: 10,
		Px: 1, Py: 1,
		NIters:        1,
		AlphaKappa:    0.29,
		BoundaryKappa: 0.29,
	}
}

// Scenario A: a field with no scene and a zero initial condition stays zero.
func TestScenarioAZeroField(t *testing.T) {
	cb := baseControlBlock()
	cb.NIters = 3
	w := newRecordingWriter()

	_, final, err := Run(cb, w, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(w.frames))
	}
	for _, v := range final {
		if v != 0 {
			t.Fatalf("expected all-zero final frame, found %v", v)
		}
	}
}

// Scenario B: a sine stimulus at (5,5) must appear in the published frames
// at exactly the values the source documents: data[5,5] = 0, 10, 0 at
// iterations 0, 1, 2 (sin(0), 10*sin(pi/2), 10*sin(pi)). Each frame k
// publishes cur as it stands during iteration k -- after that iteration's
// stimulus trigger but before the stencil's next is rotated in -- so these
// values are exact, not merely nonzero.
func TestScenarioBSineSource(t *testing.T) {
	cb := baseControlBlock()
	cb.NIters = 3
	cb.Scene = []config.SceneItem{
		{Kind: config.SceneSine, Start: 0, Duration: 100, Row: 5, Col: 5, Period: 4},
	}
	w := newRecordingWriter()

	if _, _, err := Run(cb, w, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(w.frames))
	}

	want := []float64{0, 10, 0}
	cell := 5*cb.N + 5
	for iter, frame := range w.frames {
		got := frame[cell]
		if math.Abs(got-want[iter]) > 1e-9 {
			t.Fatalf("iter %d: data[5,5] = %v, want %v", iter, got, want[iter])
		}
	}
}

// Scenario C: tiling the same domain into 2x2 tiles with halo exchange
// enabled must reproduce the single-tile result (the decomposition is an
// implementation detail, not a physical one).
func TestScenarioCHaloConsistency(t *testing.T) {
	scene := []config.SceneItem{
		{Kind: config.SceneSine, Start: 0, Duration: 100, Row: 6, Col: 6, Period: 4},
	}

	single := baseControlBlock()
	single.M, single.N = 12, 12
	single.NIters = 6
	single.Scene = scene
	wSingle := newRecordingWriter()
	if _, _, err := Run(single, wSingle, nil); err != nil {
		t.Fatalf("Run (single tile): %v", err)
	}

	tiled := baseControlBlock()
	tiled.M, tiled.N = 12, 12
	tiled.Px, tiled.Py = 2, 2
	tiled.NIters = 6
	tiled.Scene = scene
	wTiled := newRecordingWriter()
	if _, _, err := Run(tiled, wTiled, nil); err != nil {
		t.Fatalf("Run (tiled): %v", err)
	}

	for iter := range wSingle.frames {
		a, b := wSingle.frames[iter], wTiled.frames[iter]
		for i := range a {
			if math.Abs(a[i]-b[i]) > 1e-9 {
				t.Fatalf("iter %d cell %d: single=%v tiled=%v diverged", iter, i, a[i], b[i])
			}
		}
	}
}

// Scenario D: an obstacle region has alpha pinned to zero and produces a
// different trajectory than the same run without the obstacle.
func TestScenarioDObstacle(t *testing.T) {
	scene := []config.SceneItem{
		{Kind: config.SceneSine, Start: 0, Duration: 100, Row: 5, Col: 5, Period: 4},
	}

	without := baseControlBlock()
	without.NIters = 8
	without.Scene = scene
	wWithout := newRecordingWriter()
	if _, _, err := Run(without, wWithout, nil); err != nil {
		t.Fatalf("Run (no obstacle): %v", err)
	}

	withObstacle := baseControlBlock()
	withObstacle.NIters = 8
	withObstacle.Scene = append(append([]config.SceneItem{}, scene...), config.SceneItem{
		Kind: config.SceneRectObstacle, Row: 6, Col: 6, Width: 2, Height: 2,
	})
	wWith := newRecordingWriter()
	if _, _, err := Run(withObstacle, wWith, nil); err != nil {
		t.Fatalf("Run (obstacle): %v", err)
	}

	diverged := false
	last := len(wWithout.frames) - 1
	for i := range wWithout.frames[last] {
		if math.Abs(wWithout.frames[last][i]-wWith.frames[last][i]) > 1e-12 {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Fatalf("obstacle should change the simulation trajectory")
	}
}

// Scenario E: the absorbing boundary keeps the field from blowing up well
// past the point a reflecting boundary would start piling up energy.
func TestScenarioEAbsorbingBoundary(t *testing.T) {
	cb := baseControlBlock()
	cb.NIters = 40
	cb.Scene = []config.SceneItem{
		{Kind: config.SceneSine, Start: 0, Duration: 5, Row: 5, Col: 5, Period: 4},
	}
	w := newRecordingWriter()

	_, final, err := Run(cb, w, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, v := range final {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("field diverged to %v", v)
		}
		if math.Abs(v) > 1000 {
			t.Fatalf("field amplitude %v suggests unbounded growth", v)
		}
	}
}

// Scenario F: a collector write failure aborts every worker promptly instead
// of deadlocking on the barrier.
func TestScenarioFCollectorFailurePropagates(t *testing.T) {
	cb := baseControlBlock()
	cb.NIters = 10
	w := newRecordingWriter()
	w.failAt = 3

	_, _, err := Run(cb, w, nil)
	if err == nil {
		t.Fatalf("expected Run to report the collector's write failure")
	}
}

// NoComm bypasses the halo protocol even with multiple tiles, and must not
// deadlock.
func TestNoCommBypassesHaloExchange(t *testing.T) {
	cb := baseControlBlock()
	cb.M, cb.N = 8, 8
	cb.Px, cb.Py = 2, 1
	cb.NIters = 4
	cb.NoComm = true
	w := newRecordingWriter()

	if _, _, err := Run(cb, w, nil); err != nil {
		t.Fatalf("Run with NoComm: %v", err)
	}
	if len(w.frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(w.frames))
	}
}
