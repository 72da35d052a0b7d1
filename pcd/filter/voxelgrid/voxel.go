package voxelgrid

import (
	"github.com/golang/geo/r3"
	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pcdsurface/vec"
)

// Voxel is the range [Min, Max] of its cell's z-sorted point buffer
// whose points share z-bucket Bucket.
type Voxel struct {
	Bucket int
	Min    int
	Max    int
	Count  int

	points []mat.Vec3
}

// Points returns the member points. The slice aliases the cell buffer.
func (v Voxel) Points() []mat.Vec3 {
	if v.Count == 0 {
		return nil
	}
	return v.points[v.Min : v.Max+1]
}

// Mean returns the centroid of the member points.
func (v Voxel) Mean() (mat.Vec3, error) {
	if v.Count == 0 {
		return mat.Vec3{}, ErrZeroCount
	}
	var sum r3.Vector
	for _, p := range v.points[v.Min : v.Max+1] {
		sum = sum.Add(vec.R3(p))
	}
	return vec.FromR3(sum.Mul(1 / float64(v.Count))), nil
}
