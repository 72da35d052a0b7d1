package cellgrid

import (
	"math"

	"github.com/pkg/errors"
)

// MaxBuckets is the largest supported resolution of a single axis.
const MaxBuckets = 1 << 30

var (
	ErrDegenerateStep  = errors.New("step size must be positive and finite")
	ErrGridTooLarge    = errors.New("grid resolution too large")
	ErrIndexOutOfRange = errors.New("bucket index out of range")
)

// Axis maps coordinates along one axis to bucket indices.
// Bucket i covers [Min+i*Step, Min+(i+1)*Step).
type Axis struct {
	Min  float64
	Step float64
	N    int
}

// NewAxis returns the axis covering [min, max] with the given step.
// The resolution is floor((max-min)/step)+1, i.e. the ceiling of the
// extent in steps, plus one extra bucket when the extent is an exact
// multiple of step so that max itself has a bucket.
func NewAxis(min, max, step float64) (Axis, error) {
	if err := CheckStep(step); err != nil {
		return Axis{}, err
	}
	e := (max - min) / step
	if math.IsNaN(e) || e < 0 {
		return Axis{}, errors.Errorf("invalid axis range [%v, %v]", min, max)
	}
	if e >= MaxBuckets-1 {
		return Axis{}, errors.Wrapf(ErrGridTooLarge, "extent %v with step %v", max-min, step)
	}
	return Axis{
		Min:  min,
		Step: step,
		N:    int(math.Floor(e)) + 1,
	}, nil
}

// CheckStep returns ErrDegenerateStep unless step is positive and finite.
func CheckStep(step float64) error {
	if !(step > 0) || math.IsInf(step, 1) {
		return errors.Wrapf(ErrDegenerateStep, "step %v", step)
	}
	return nil
}

// Bucket returns the index of the bucket containing v.
// Truncation landing one past the last bucket is clamped back to N-1.
func (a Axis) Bucket(v float64) (int, error) {
	f := (v - a.Min) / a.Step
	if math.IsNaN(f) || f < 0 || f > float64(a.N) {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "coordinate %v on axis [%v, +%d*%v)", v, a.Min, a.N, a.Step)
	}
	i := int(f)
	if i == a.N {
		i = a.N - 1
	}
	return i, nil
}

// Lower returns the lower bound of bucket i.
func (a Axis) Lower(i int) float64 {
	return a.Min + float64(i)*a.Step
}
