// Package obstacle implements the rectangular alpha-clearing overlay applied
// once at setup to carve zero-coefficient regions out of a tile's alpha map.
package obstacle

import "github.com/dramalf/wave2d/internal/wavetile"

// ClearAlphaRegion zeros alpha at every local cell of t whose global
// coordinate falls in the axis-aligned rectangle
// [row, row+height) x [col, col+width), provided that cell is inside t's
// interior. Cells outside the rectangle or outside t are left untouched.
// Applying the same region twice is equivalent to applying it once.
func ClearAlphaRegion(t *wavetile.Tile, row, col, width, height int) {
	for gr := row; gr < row+height; gr++ {
		for gc := col; gc < col+width; gc++ {
			if !t.CheckBounds(gr, gc) {
				continue
			}
			r, c, ok := t.MapToLocal(gr, gc)
			if !ok {
				continue
			}
			t.SetAlpha(r, c, 0)
		}
	}
}
