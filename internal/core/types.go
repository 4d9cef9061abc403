// Package core holds the small contracts shared by the viewers: the Sim
// interface they drive, the raster they draw and tick pacing.
package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Sim is what a viewer drives: a steppable world rasterized into cells.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}
