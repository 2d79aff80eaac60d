// Package framestore persists per-iteration field frames to a dense binary
// file, and can additionally export a single frame in NumPy .npy format for
// downstream plotting/analysis tools.
package framestore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const (
	magic         = "WAV2"
	formatVersion = uint32(1)
	headerSize    = 4 + 4 + 4 + 4 + 4 // magic + version + m + n + frameCount
)

// Writer appends field frames to a temp file and assembles the final file
// (with a header carrying the frame count) on Finalize, mirroring the
// temp-file-then-assemble lifecycle used for PMTiles archives: data is
// streamed out as it arrives, and the header -- which needs the final frame
// count -- is written only at Finalize.
type Writer struct {
	outputPath string
	m, n       int

	tmpFile    *os.File
	buffered   *bufio.Writer
	frameCount uint32
	nextIter   int
	finalized  bool
}

// NewWriter creates a writer for frames of shape m x n.
func NewWriter(outputPath string, m, n int) (*Writer, error) {
	dir := filepath.Dir(outputPath)
	tmpFile, err := os.CreateTemp(dir, "wave2d-frames-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("framestore: creating temp file: %w", err)
	}
	return &Writer{
		outputPath: outputPath,
		m:          m,
		n:          n,
		tmpFile:    tmpFile,
		buffered:   bufio.NewWriterSize(tmpFile, 1<<20),
	}, nil
}

// WriteFrame appends the frame for iteration iter. Frames must arrive one
// per iteration, in order, starting at iteration 0; a gap or repeat is
// rejected. This matches the collector's single sequential write loop (the
// driver never reorders frames).
func (w *Writer) WriteFrame(iter int, data []float64) error {
	if w.finalized {
		return fmt.Errorf("framestore: WriteFrame called after Finalize")
	}
	if len(data) != w.m*w.n {
		return fmt.Errorf("framestore: frame has %d values, want %d", len(data), w.m*w.n)
	}
	if iter != w.nextIter {
		return fmt.Errorf("framestore: out-of-order frame: got iter %d, want %d", iter, w.nextIter)
	}

	buf := make([]byte, 8)
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := w.buffered.Write(buf); err != nil {
			return fmt.Errorf("framestore: writing frame %d: %w", iter, err)
		}
	}

	w.nextIter++
	w.frameCount++
	return nil
}

// Finalize flushes buffered data, writes the final file (header + frame
// data), and removes the temp file.
func (w *Writer) Finalize() error {
	if w.finalized {
		return fmt.Errorf("framestore: already finalized")
	}
	w.finalized = true

	if err := w.buffered.Flush(); err != nil {
		return fmt.Errorf("framestore: flushing temp file: %w", err)
	}

	out, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("framestore: creating output file: %w", err)
	}
	defer out.Close()

	header := make([]byte, headerSize)
	copy(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(w.m))
	binary.LittleEndian.PutUint32(header[12:16], uint32(w.n))
	binary.LittleEndian.PutUint32(header[16:20], w.frameCount)
	if _, err := out.Write(header); err != nil {
		return fmt.Errorf("framestore: writing header: %w", err)
	}

	if _, err := w.tmpFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("framestore: seeking temp file: %w", err)
	}
	if _, err := io.Copy(out, w.tmpFile); err != nil {
		return fmt.Errorf("framestore: copying frame data: %w", err)
	}

	tmpPath := w.tmpFile.Name()
	w.tmpFile.Close()
	return os.Remove(tmpPath)
}

// Abort discards the temp file, and every frame written so far, without
// producing an output file.
func (w *Writer) Abort() {
	if w.finalized {
		return
	}
	w.finalized = true
	tmpPath := w.tmpFile.Name()
	w.tmpFile.Close()
	os.Remove(tmpPath)
}

// FrameCount reports how many frames have been written so far.
func (w *Writer) FrameCount() int { return int(w.frameCount) }
