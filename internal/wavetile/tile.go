// Package wavetile implements the per-tile state for the 2D wave solver:
// triple-buffered field storage over a single contiguous slab, the
// damping/coefficient map, tile geometry, and the primitive accessors the
// stencil, halo, stimulus and obstacle packages build on.
package wavetile

import "fmt"

// DefaultKappa is the damping/reflection coefficient used when a caller does
// not supply one explicitly. It is applied both to the initial alpha map
// (squared) and, independently, to the absorbing boundary coefficient.
const DefaultKappa = 0.29

// Geometry describes the placement of one tile within the global Px×Py tile
// grid, independent of any particular buffer contents. Exported so the
// driver can compute neighbor ids and global-edge membership without
// constructing a full Tile.
type Geometry struct {
	TID      int // tile id in [0, Px*Py)
	Px, Py   int
	Tx, Ty   int // tile position: Tx = TID % Px, Ty = TID / Px
	M, N     int // interior extents (rows, cols)
	GridM    int // M + 2 (padded with a one-cell ghost ring)
	GridN    int // N + 2
	StartRow int // global row of interior cell (0,0)
	StartCol int // global col of interior cell (0,0)
}

// NewGeometry computes tile geometry under the remainder-front rule: the
// first `domainDim mod tileCount` tiles along an axis get one extra row or
// column. tid identifies the tile; M, N are the full domain extents; Px, Py
// the tile grid.
func NewGeometry(tid, m, n, px, py int) (Geometry, error) {
	if px <= 0 || py <= 0 {
		return Geometry{}, fmt.Errorf("wavetile: tile grid must be positive, got Px=%d Py=%d", px, py)
	}
	if tid < 0 || tid >= px*py {
		return Geometry{}, fmt.Errorf("wavetile: tile id %d out of range [0,%d)", tid, px*py)
	}
	if m <= 0 || n <= 0 {
		return Geometry{}, fmt.Errorf("wavetile: domain extents must be positive, got M=%d N=%d", m, n)
	}

	tx := tid % px
	ty := tid / px

	colWidth := func(col int) int {
		w := n / px
		if col < n%px {
			w++
		}
		return w
	}
	rowHeight := func(row int) int {
		h := m / py
		if row < m%py {
			h++
		}
		return h
	}

	tileN := colWidth(tx)
	tileM := rowHeight(ty)
	// The smallest tile along each axis gets no remainder bonus; reject the
	// whole tiling if that tile would be empty, whichever tile tid names.
	if n/px <= 0 || m/py <= 0 {
		return Geometry{}, fmt.Errorf("wavetile: tile grid %dx%d does not divide domain %dx%d (remainder policy yields a non-positive tile)", px, py, m, n)
	}

	startCol := 0
	for c := 0; c < tx; c++ {
		startCol += colWidth(c)
	}
	startRow := 0
	for r := 0; r < ty; r++ {
		startRow += rowHeight(r)
	}

	return Geometry{
		TID: tid, Px: px, Py: py, Tx: tx, Ty: ty,
		M: tileM, N: tileN,
		GridM: tileM + 2, GridN: tileN + 2,
		StartRow: startRow, StartCol: startCol,
	}, nil
}

// Side names one side of the global domain.
type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

// IsGlobalEdge reports whether this tile touches the given side of the
// global domain.
func (g Geometry) IsGlobalEdge(s Side) bool {
	switch s {
	case SideTop:
		return g.Ty == 0
	case SideBottom:
		return g.Ty == g.Py-1
	case SideLeft:
		return g.Tx == 0
	case SideRight:
		return g.Tx == g.Px-1
	default:
		return false
	}
}

// Tile owns one worker's slice of the global field: a single contiguous
// memory pool holding three rotating planes (prev, cur, next) plus the
// alpha coefficient map. A Tile has exactly one owner; there is no internal
// locking because nothing but the owning goroutine ever touches it.
type Tile struct {
	Geometry

	Pool  []float64 // len == 3*GridM*GridN, partitioned into three planes
	Alpha []float64 // len == GridM*GridN

	PrevOff, CurOff, NextOff int // always a permutation of {0, G, 2G}
}

// New allocates a tile's buffers for the given geometry, initializing alpha
// to kappa*kappa everywhere and the field planes to zero.
func New(g Geometry, kappa float64) *Tile {
	gSize := g.GridM * g.GridN
	t := &Tile{
		Geometry: g,
		Pool:     make([]float64, 3*gSize),
		Alpha:    make([]float64, gSize),
		PrevOff:  0,
		CurOff:   gSize,
		NextOff:  2 * gSize,
	}
	a := kappa * kappa
	for i := range t.Alpha {
		t.Alpha[i] = a
	}
	return t
}

// InBounds reports whether (r, c) addresses a valid padded cell.
func (t *Tile) InBounds(r, c int) bool {
	return r >= 0 && r < t.GridM && c >= 0 && c < t.GridN
}

func (t *Tile) index(off, r, c int) int {
	return off + r*t.GridN + c
}

// CurV, PrevV, NextV, AlphaV are read-only accessors. ok is false when
// (r, c) is out of range; callers that are guaranteed in-bounds by loop
// construction may ignore it.
func (t *Tile) CurV(r, c int) (float64, bool) {
	if !t.InBounds(r, c) {
		return 0, false
	}
	return t.Pool[t.index(t.CurOff, r, c)], true
}

func (t *Tile) PrevV(r, c int) (float64, bool) {
	if !t.InBounds(r, c) {
		return 0, false
	}
	return t.Pool[t.index(t.PrevOff, r, c)], true
}

func (t *Tile) NextV(r, c int) (float64, bool) {
	if !t.InBounds(r, c) {
		return 0, false
	}
	return t.Pool[t.index(t.NextOff, r, c)], true
}

func (t *Tile) AlphaV(r, c int) (float64, bool) {
	if !t.InBounds(r, c) {
		return 0, false
	}
	return t.Alpha[r*t.GridN+c], true
}

// Cur, Prev, Next return a mutable pointer to the given plane's cell, or
// (nil, false) if (r, c) is out of range.
func (t *Tile) Cur(r, c int) (*float64, bool) {
	if !t.InBounds(r, c) {
		return nil, false
	}
	return &t.Pool[t.index(t.CurOff, r, c)], true
}

func (t *Tile) Prev(r, c int) (*float64, bool) {
	if !t.InBounds(r, c) {
		return nil, false
	}
	return &t.Pool[t.index(t.PrevOff, r, c)], true
}

func (t *Tile) Next(r, c int) (*float64, bool) {
	if !t.InBounds(r, c) {
		return nil, false
	}
	return &t.Pool[t.index(t.NextOff, r, c)], true
}

// SetAlpha zeroes or restores a single alpha cell; used by the obstacle
// overlay. ok is false if (r, c) is out of range.
func (t *Tile) SetAlpha(r, c int, v float64) bool {
	if !t.InBounds(r, c) {
		return false
	}
	t.Alpha[r*t.GridN+c] = v
	return true
}

// CheckBounds reports whether the global coordinate (gr, gc) falls inside
// this tile's interior half-open rectangle.
func (t *Tile) CheckBounds(gr, gc int) bool {
	return gr >= t.StartRow && gr < t.StartRow+t.M &&
		gc >= t.StartCol && gc < t.StartCol+t.N
}

// MapToLocal converts a global coordinate to the local padded coordinate of
// the corresponding interior cell. ok is false if the coordinate does not
// fall inside this tile.
func (t *Tile) MapToLocal(gr, gc int) (r, c int, ok bool) {
	if !t.CheckBounds(gr, gc) {
		return 0, 0, false
	}
	return gr - t.StartRow + 1, gc - t.StartCol + 1, true
}

// ExtractRow copies row r of the cur plane. ok is false if r is out of range.
func (t *Tile) ExtractRow(r int) ([]float64, bool) {
	if r < 0 || r >= t.GridM {
		return nil, false
	}
	start := t.index(t.CurOff, r, 0)
	out := make([]float64, t.GridN)
	copy(out, t.Pool[start:start+t.GridN])
	return out, true
}

// ExtractCol copies column c of the cur plane. ok is false if c is out of range.
func (t *Tile) ExtractCol(c int) ([]float64, bool) {
	if c < 0 || c >= t.GridN {
		return nil, false
	}
	out := make([]float64, t.GridM)
	for r := 0; r < t.GridM; r++ {
		out[r] = t.Pool[t.index(t.CurOff, r, c)]
	}
	return out, true
}

// UpdateRow overwrites row r of the cur plane. values must have length GridN.
func (t *Tile) UpdateRow(r int, values []float64) bool {
	if r < 0 || r >= t.GridM || len(values) != t.GridN {
		return false
	}
	start := t.index(t.CurOff, r, 0)
	copy(t.Pool[start:start+t.GridN], values)
	return true
}

// UpdateCol overwrites column c of the cur plane. values must have length GridM.
func (t *Tile) UpdateCol(c int, values []float64) bool {
	if c < 0 || c >= t.GridN || len(values) != t.GridM {
		return false
	}
	for r, v := range values {
		t.Pool[t.index(t.CurOff, r, c)] = v
	}
	return true
}

// Advance rotates the three plane offsets: (prev, cur, next) <- (cur, next, prev).
// It never copies data, only renames planes.
func (t *Tile) Advance() {
	t.PrevOff, t.CurOff, t.NextOff = t.CurOff, t.NextOff, t.PrevOff
}
