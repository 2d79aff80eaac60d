package framestore

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func readAllFrames(t *testing.T, path string, m, n int) [][]float64 {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data[0:4]) != magic {
		t.Fatalf("bad magic: %q", data[0:4])
	}
	gotM := binary.LittleEndian.Uint32(data[8:12])
	gotN := binary.LittleEndian.Uint32(data[12:16])
	if int(gotM) != m || int(gotN) != n {
		t.Fatalf("header shape = %dx%d, want %dx%d", gotM, gotN, m, n)
	}
	frameCount := binary.LittleEndian.Uint32(data[16:20])

	body := data[headerSize:]
	frameBytes := m * n * 8
	frames := make([][]float64, 0, frameCount)
	for f := 0; f < int(frameCount); f++ {
		chunk := body[f*frameBytes : (f+1)*frameBytes]
		frame := make([]float64, m*n)
		for i := range frame {
			frame[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*8 : i*8+8]))
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.w2d")
	w, err := NewWriter(path, 2, 3)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	frame0 := []float64{1, 2, 3, 4, 5, 6}
	frame1 := []float64{-1, -2, -3, -4, -5, -6}
	if err := w.WriteFrame(0, frame0); err != nil {
		t.Fatalf("WriteFrame 0: %v", err)
	}
	if err := w.WriteFrame(1, frame1); err != nil {
		t.Fatalf("WriteFrame 1: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	frames := readAllFrames(t, path, 2, 3)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	for i, want := range [][]float64{frame0, frame1} {
		for j := range want {
			if frames[i][j] != want[j] {
				t.Fatalf("frame %d[%d] = %v, want %v", i, j, frames[i][j], want[j])
			}
		}
	}
}

func TestWriterRejectsOutOfOrderFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.w2d")
	w, err := NewWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Abort()

	if err := w.WriteFrame(1, []float64{0}); err == nil {
		t.Fatalf("expected out-of-order WriteFrame to fail")
	}
}

func TestWriterRejectsWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.w2d")
	w, err := NewWriter(path, 2, 2)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Abort()

	if err := w.WriteFrame(0, []float64{1, 2, 3}); err == nil {
		t.Fatalf("expected mismatched frame length to fail")
	}
}

func TestWriterAbortLeavesNoOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.w2d")
	w, err := NewWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteFrame(0, []float64{42}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	w.Abort()

	if _, err := os.Stat(path); err == nil {
		t.Fatalf("Abort should not produce an output file")
	}
	if err := w.WriteFrame(1, []float64{1}); err == nil {
		t.Fatalf("WriteFrame after Abort should fail")
	}
}

func TestWriterFinalizeTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.w2d")
	w, err := NewWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteFrame(0, []float64{1}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := w.Finalize(); err == nil {
		t.Fatalf("expected second Finalize to fail")
	}
}
