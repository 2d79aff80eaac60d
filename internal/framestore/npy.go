package framestore

import (
	"fmt"
	"io"
	"os"

	"github.com/kshedden/gonpy"
)

// nopCloser lets us hand gonpy a Writer that wraps an *os.File we still want
// to Close ourselves; gonpy closes whatever it's given and ignores the
// error.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// ExportNPY writes a single m x n frame as a NumPy .npy file for downstream
// plotting or analysis tools outside this program.
func ExportNPY(path string, m, n int, data []float64) error {
	if len(data) != m*n {
		return fmt.Errorf("framestore: ExportNPY: frame has %d values, want %d", len(data), m*n)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("framestore: ExportNPY: %w", err)
	}
	defer f.Close()

	npw, err := gonpy.NewWriter(nopCloser{f})
	if err != nil {
		return fmt.Errorf("framestore: ExportNPY: creating npy writer: %w", err)
	}
	npw.Shape = []int{m, n}
	if err := npw.WriteFloat64(data); err != nil {
		return fmt.Errorf("framestore: ExportNPY: %w", err)
	}
	return f.Close()
}
