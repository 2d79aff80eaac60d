// Package driver wires tiles, stimuli, obstacles, the halo protocol and the
// stencil into the per-iteration loop: one goroutine per tile plus a
// dedicated collector goroutine, synchronized by a two-phase barrier.
package driver

import (
	"fmt"
	"sync"
	"time"

	"github.com/dramalf/wave2d/internal/barrier"
	"github.com/dramalf/wave2d/internal/config"
	"github.com/dramalf/wave2d/internal/diag"
	"github.com/dramalf/wave2d/internal/halo"
	"github.com/dramalf/wave2d/internal/obstacle"
	"github.com/dramalf/wave2d/internal/stencil"
	"github.com/dramalf/wave2d/internal/stimulus"
	"github.com/dramalf/wave2d/internal/wavetile"
)

// FrameWriter receives one frame per iteration, in strictly increasing
// iteration order. Implemented by *framestore.Writer; a fake is used in
// tests.
type FrameWriter interface {
	WriteFrame(iter int, data []float64) error
}

// Stats summarizes a completed (or aborted) run.
type Stats struct {
	Iterations int
	Elapsed    time.Duration
}

// Run builds the tile grid from cb, runs the full iteration loop, and
// writes one frame per iteration to writer. It returns the last frame
// published to writer alongside run statistics. reporter may be nil to
// disable periodic stats logging.
func Run(cb *config.ControlBlock, writer FrameWriter, reporter *diag.Reporter) (Stats, []float64, error) {
	numTiles := cb.Px * cb.Py

	tiles := make([]*wavetile.Tile, numTiles)
	neighbors := make([]halo.Neighbors, numTiles)
	mailboxes := make([]halo.Mailbox, numTiles)
	stimuli := make([][]*stimulus.Stimulus, numTiles)

	for tid := 0; tid < numTiles; tid++ {
		geom, err := wavetile.NewGeometry(tid, cb.M, cb.N, cb.Px, cb.Py)
		if err != nil {
			return Stats{}, nil, err
		}
		tile := wavetile.New(geom, cb.AlphaKappa)
		tiles[tid] = tile
		neighbors[tid] = halo.ComputeNeighbors(tid, cb.Px, cb.Py)
		mailboxes[tid] = halo.NewMailbox()

		for _, item := range cb.Scene {
			switch item.Kind {
			case config.SceneRectObstacle:
				obstacle.ClearAlphaRegion(tile, item.Row, item.Col, item.Width, item.Height)
			case config.SceneSine:
				s := stimulus.New(tile, item.Start, item.Duration, item.Row, item.Col, item.Period)
				stimuli[tid] = append(stimuli[tid], s)
			}
		}
	}

	frame := make([]float64, cb.M*cb.N)

	publishBarrier := barrier.New(numTiles + 1)
	rotateBarrier := barrier.New(numTiles + 1)

	var wg sync.WaitGroup
	errCh := make(chan error, numTiles+1)
	abortOnce := sync.Once{}
	abort := func(err error) {
		abortOnce.Do(func() {
			errCh <- err
			publishBarrier.Abort(err)
			rotateBarrier.Abort(err)
		})
	}

	wg.Add(numTiles)
	for tid := 0; tid < numTiles; tid++ {
		go runWorker(cb, tid, tiles[tid], stimuli[tid], mailboxes, neighbors[tid], frame, publishBarrier, rotateBarrier, abort, &wg)
	}

	wg.Add(1)
	go runCollector(cb, writer, reporter, frame, publishBarrier, rotateBarrier, abort, &wg)

	start := time.Now()
	wg.Wait()

	select {
	case err := <-errCh:
		return Stats{Iterations: 0, Elapsed: time.Since(start)}, nil, err
	default:
	}

	finalFrame := make([]float64, len(frame))
	copy(finalFrame, frame)

	return Stats{Iterations: cb.NIters, Elapsed: time.Since(start)}, finalFrame, nil
}

func runWorker(
	cb *config.ControlBlock,
	tid int,
	tile *wavetile.Tile,
	stimuli []*stimulus.Stimulus,
	mailboxes []halo.Mailbox,
	neighbors halo.Neighbors,
	frame []float64,
	publishBarrier, rotateBarrier *barrier.Barrier,
	abort func(error),
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	numTiles := cb.Px * cb.Py
	inbox := mailboxes[tid]

	for iter := 0; iter < cb.NIters; iter++ {
		active := stimuli[:0]
		for _, s := range stimuli {
			if s.TriggerIfAvailable(iter) {
				active = append(active, s)
			}
		}
		stimuli = active

		if numTiles != 1 && !cb.NoComm {
			if err := halo.Exchange(tile, inbox, mailboxes, neighbors); err != nil {
				abort(fmt.Errorf("tile %d: %w", tid, err))
				return
			}
		}

		stencil.Interior(tile)
		stencil.EdgeRing(tile)
		stencil.AbsorbingBoundaries(tile, cb.BoundaryKappa)

		for r := 0; r < tile.M; r++ {
			for c := 0; c < tile.N; c++ {
				v, _ := tile.CurV(r+1, c+1)
				frame[(tile.StartRow+r)*cb.N+(tile.StartCol+c)] = v
			}
		}

		if err := publishBarrier.Wait(); err != nil {
			return
		}
		if err := rotateBarrier.Wait(); err != nil {
			return
		}

		tile.Advance()
	}
}

func runCollector(
	cb *config.ControlBlock,
	writer FrameWriter,
	reporter *diag.Reporter,
	frame []float64,
	publishBarrier, rotateBarrier *barrier.Barrier,
	abort func(error),
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for iter := 0; iter < cb.NIters; iter++ {
		if err := publishBarrier.Wait(); err != nil {
			return
		}

		if err := writer.WriteFrame(iter, frame); err != nil {
			abort(fmt.Errorf("writing frame %d: %w", iter, err))
			// Workers are now blocked in rotateBarrier.Wait; abort has
			// already released both barriers, so returning here does not
			// leave them deadlocked.
			return
		}
		if reporter != nil {
			reporter.Report(iter, cb.NIters, frame)
		}

		if err := rotateBarrier.Wait(); err != nil {
			return
		}
	}
}
