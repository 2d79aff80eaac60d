// Package diag reports periodic field statistics to the log, at a cadence
// the driver controls. It never touches the output file -- it exists purely
// to give an operator watching stderr a sense that the simulation is alive
// and behaving.
package diag

import (
	"log"
	"math"
	"time"
)

// Reporter accumulates wall-clock rate information across iterations and
// prints a summary line every StatsFreq iterations.
type Reporter struct {
	StatsFreq int
	start     time.Time
	lastIter  int
}

// NewReporter builds a reporter; freq <= 0 disables all output from Report.
func NewReporter(freq int) *Reporter {
	return &Reporter{StatsFreq: freq, start: time.Now()}
}

// Report logs RMS and max-abs amplitude for the current frame if iter is a
// multiple of StatsFreq (and StatsFreq > 0). NIters is used only to report
// the nearly-done percentage.
func (r *Reporter) Report(iter, niters int, frame []float64) {
	if r.StatsFreq <= 0 || iter%r.StatsFreq != 0 {
		return
	}

	var sumSq, maxAbs float64
	for _, v := range frame {
		sumSq += v * v
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	rms := math.Sqrt(sumSq / float64(len(frame)))

	elapsed := time.Now().Sub(r.start)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(iter-r.lastIter+1) / secs
	}

	pct := 0.0
	if niters > 0 {
		pct = 100 * float64(iter) / float64(niters)
	}

	log.Printf("iter %d/%d (%.0f%%): rms=%.6g max=%.6g elapsed=%s rate=%.1f iter/s",
		iter, niters, pct, rms, maxAbs, formatDuration(elapsed), rate)

	r.lastIter = iter
	r.start = time.Now()
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return d.String()
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return (time.Duration(m*60+s) * time.Second).String()
}
