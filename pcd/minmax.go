package pcd

import (
	"math"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
)

var (
	ErrEmptyInput   = errors.New("no point")
	ErrInvalidPoint = errors.New("point has non-finite coordinate")
)

// MinMaxVec3 returns the per-axis bounds of the points in one pass.
func MinMaxVec3(points []mat.Vec3) (mat.Vec3, mat.Vec3, error) {
	if len(points) == 0 {
		return mat.Vec3{}, mat.Vec3{}, ErrEmptyInput
	}
	min := mat.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := mat.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i, v := range points {
		for j := range v {
			f := float64(v[j])
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return mat.Vec3{}, mat.Vec3{}, errors.Wrapf(ErrInvalidPoint, "point %d: %v", i, v)
			}
			if v[j] < min[j] {
				min[j] = v[j]
			}
			if v[j] > max[j] {
				max[j] = v[j]
			}
		}
	}
	return min, max, nil
}
