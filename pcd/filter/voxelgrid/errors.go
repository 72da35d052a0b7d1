package voxelgrid

import (
	"github.com/pkg/errors"

	"github.com/seqsense/pcdsurface/pcd"
	"github.com/seqsense/pcdsurface/pcd/storage/cellgrid"
)

// Errors returned while building a CellDivision. ErrIndexOutOfRange and
// ErrZeroCount indicate a broken internal invariant, not bad input.
var (
	ErrEmptyInput      = pcd.ErrEmptyInput
	ErrInvalidPoint    = pcd.ErrInvalidPoint
	ErrDegenerateStep  = cellgrid.ErrDegenerateStep
	ErrGridTooLarge    = cellgrid.ErrGridTooLarge
	ErrIndexOutOfRange = cellgrid.ErrIndexOutOfRange
	ErrZeroCount       = errors.New("centroid of empty voxel")
)
