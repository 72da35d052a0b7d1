package vec

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
)

// ErrZeroLength is returned when normalizing a vector without direction.
var ErrZeroLength = errors.New("zero length vector")

func R3(v mat.Vec3) r3.Vector {
	return r3.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func FromR3(v r3.Vector) mat.Vec3 {
	return mat.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Normalize returns the unit vector of v.
func Normalize(v mat.Vec3) (mat.Vec3, error) {
	r := R3(v)
	if r.Norm2() == 0 {
		return mat.Vec3{}, ErrZeroLength
	}
	return FromR3(r.Normalize()), nil
}
