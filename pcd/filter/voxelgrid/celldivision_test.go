package voxelgrid

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/seqsense/pcgol/mat"
)

func randomCloud(n int, seed int64) []mat.Vec3 {
	r := rand.New(rand.NewSource(seed))
	points := make([]mat.Vec3, n)
	for i := range points {
		x := r.Float32()*8 - 4
		y := r.Float32() * 6
		// Wavy surface with some spread so that voxels get several points.
		z := float32(math.Sin(float64(x))) + r.Float32()*0.3
		points[i] = mat.Vec3{x, y, z}
	}
	return points
}

func TestCellDivision_Scenario(t *testing.T) {
	points := []mat.Vec3{
		{0, 0, 0},
		{0, 0, 0.9},
		{0, 0, 1.1},
		{1, 1, 0},
	}
	d, err := NewCellDivision(points, mat.Vec3{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	if r := d.Resolution(); r != [3]int{2, 2, 2} {
		t.Errorf("Expected resolution: [2 2 2], got: %v", r)
	}
	if n := d.NumCells(); n != 2 {
		t.Errorf("Expected 2 cells, got: %d", n)
	}

	c := d.Cell(0, 0)
	if c == nil {
		t.Fatal("Cell (0, 0) must exist")
	}
	if len(c.Voxels()) != 2 {
		t.Fatalf("Expected 2 voxels in cell (0, 0), got: %d", len(c.Voxels()))
	}
	v0, ok := c.Voxel(0)
	if !ok || v0.Count != 2 {
		t.Errorf("Expected 2 points in voxel 0, got: %+v", v0)
	}
	if d.Cell(1, 1) == nil {
		t.Error("Cell (1, 1) must exist")
	}
	if d.Cell(0, 1) != nil || d.Cell(1, 0) != nil {
		t.Error("Cells without points must be empty")
	}

	means, err := d.MeanPoints()
	if err != nil {
		t.Fatal(err)
	}
	expected := []mat.Vec3{
		{0, 0, 0.45},
		{0, 0, 1.1},
		{1, 1, 0},
	}
	if diff := cmp.Diff(expected, means, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Mean points differ (-expected +got):\n%s", diff)
	}
}

func TestCellDivision_MaxPoint(t *testing.T) {
	testCases := map[string]struct {
		points []mat.Vec3
		step   mat.Vec3
	}{
		"ExactMultiple": {
			points: []mat.Vec3{{0, 0, 0}, {2, 2, 2}, {0.7, 1.2, 0.1}},
			step:   mat.Vec3{0.5, 0.5, 0.5},
		},
		"Fraction": {
			points: []mat.Vec3{{-1, -1, -1}, {0.3, 2.9, 0.7}},
			step:   mat.Vec3{0.25, 0.125, 1},
		},
		"Flat": {
			points: []mat.Vec3{{1, 1, 5}, {1, 1, 5}, {1, 1, 5}},
			step:   mat.Vec3{0.25, 0.25, 0.25},
		},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			d, err := NewCellDivision(tt.points, tt.step)
			if err != nil {
				t.Fatal(err)
			}
			res := d.Resolution()
			c := d.Cell(res[1]-1, res[0]-1)
			if c == nil {
				t.Fatalf("Max point must be in the last cell (%d, %d)", res[1]-1, res[0]-1)
			}
			vs := c.Voxels()
			if last := vs[len(vs)-1]; last.Bucket != res[2]-1 {
				t.Errorf("Max point must be in the last voxel %d, got: %d", res[2]-1, last.Bucket)
			}
		})
	}
}

func TestCellDivision_Properties(t *testing.T) {
	points := randomCloud(5000, 1)
	input := append([]mat.Vec3{}, points...)

	for _, step := range []float32{0.125, 0.25, 0.5, 1} {
		step := step
		t.Run(fmt.Sprintf("Step%g", step), func(t *testing.T) {
			d, err := NewCellDivision(points, mat.Vec3{step, step, step})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(input, points); diff != "" {
				t.Fatalf("Input must not be modified:\n%s", diff)
			}

			var members []mat.Vec3
			var nVoxels int
			d.EachCell(func(row, col int, c *Cell) {
				buf := c.Points()
				if len(buf) != c.Len() {
					t.Errorf("Cell (%d, %d) has %d points but voxels cover %d", row, col, c.Len(), len(buf))
				}
				if !sort.SliceIsSorted(buf, func(i, j int) bool { return buf[i][2] < buf[j][2] }) {
					t.Errorf("Cell (%d, %d) is not sorted by z", row, col)
				}
				next := 0
				prevBucket := -1
				for _, v := range c.Voxels() {
					if v.Min != next {
						t.Errorf("Voxel %d of cell (%d, %d) starts at %d, expected %d", v.Bucket, row, col, v.Min, next)
					}
					if v.Count != v.Max-v.Min+1 {
						t.Errorf("Voxel %d has count %d for range [%d, %d]", v.Bucket, v.Count, v.Min, v.Max)
					}
					if v.Bucket <= prevBucket {
						t.Errorf("Voxel buckets must ascend, %d after %d", v.Bucket, prevBucket)
					}
					next, prevBucket = v.Max+1, v.Bucket

					var sum [3]float64
					for _, p := range v.Points() {
						checkBucket(t, d.X.Min, d.X.Step, d.X.N, col, p[0])
						checkBucket(t, d.Y.Min, d.Y.Step, d.Y.N, row, p[1])
						checkBucket(t, d.Z.Min, d.Z.Step, d.Z.N, v.Bucket, p[2])
						for i := range sum {
							sum[i] += float64(p[i])
						}
					}
					m, err := v.Mean()
					if err != nil {
						t.Fatal(err)
					}
					for i := range sum {
						if e := sum[i] / float64(v.Count); math.Abs(e-float64(m[i])) > 1e-5 {
							t.Errorf("Expected mean: %v, got: %v", sum, m)
						}
					}
					members = append(members, v.Points()...)
					nVoxels++
				}
				if next != c.Len() {
					t.Errorf("Voxels of cell (%d, %d) cover %d of %d points", row, col, next, c.Len())
				}
			})

			less := func(a, b mat.Vec3) bool {
				for i := range a {
					if a[i] != b[i] {
						return a[i] < b[i]
					}
				}
				return false
			}
			if diff := cmp.Diff(input, members, cmpopts.SortSlices(less)); diff != "" {
				t.Errorf("Voxels must cover every input point once:\n%s", diff)
			}

			means, err := d.MeanPoints()
			if err != nil {
				t.Fatal(err)
			}
			if len(means) != nVoxels || len(means) != d.NumVoxels() {
				t.Errorf("Expected one mean per voxel (%d), got: %d", nVoxels, len(means))
			}
			if len(means) > len(points) {
				t.Errorf("Output has more points (%d) than input (%d)", len(means), len(points))
			}
		})
	}
}

func checkBucket(t *testing.T, min, step float64, n, i int, v float32) {
	t.Helper()
	const eps = 1e-6
	lower := min + float64(i)*step
	upper := min + float64(i+1)*step
	if i < 0 || i >= n {
		t.Errorf("Bucket %d out of [0, %d)", i, n)
	}
	if f := float64(v); f < lower-eps || f >= upper+eps {
		t.Errorf("%v is out of bucket %d [%v, %v)", v, i, lower, upper)
	}
}

func TestCellDivision_OnePointPerVoxel(t *testing.T) {
	points := []mat.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {2, 2, 2}}
	d, err := NewCellDivision(points, mat.Vec3{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	means, err := d.MeanPoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(means) != len(points) {
		t.Errorf("Expected %d means for isolated points, got: %d", len(points), len(means))
	}
}

func TestCellDivision_Deterministic(t *testing.T) {
	points := randomCloud(20000, 2)
	step := mat.Vec3{0.25, 0.25, 0.25}

	run := func(opts ...Option) []mat.Vec3 {
		t.Helper()
		d, err := NewCellDivision(append([]mat.Vec3{}, points...), step, opts...)
		if err != nil {
			t.Fatal(err)
		}
		means, err := d.MeanPoints()
		if err != nil {
			t.Fatal(err)
		}
		return means
	}

	first := run()
	if diff := cmp.Diff(first, run()); diff != "" {
		t.Errorf("Second run differs:\n%s", diff)
	}
	for _, workers := range []int{2, 4, 16} {
		if diff := cmp.Diff(first, run(WithWorkers(workers))); diff != "" {
			t.Errorf("Run with %d workers differs:\n%s", workers, diff)
		}
	}
}

func TestCellDivision_SparseGrid(t *testing.T) {
	points := []mat.Vec3{
		{3000, 3000, 0},
		{0, 0, 0},
		{0.5, 0.5, 0.5},
		{3000, 0, 0},
	}
	d, err := NewCellDivision(points, mat.Vec3{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	means, err := d.MeanPoints()
	if err != nil {
		t.Fatal(err)
	}
	expected := []mat.Vec3{
		{0.25, 0.25, 0.25},
		{3000, 0, 0},
		{3000, 3000, 0},
	}
	if diff := cmp.Diff(expected, means); diff != "" {
		t.Errorf("Mean points differ (-expected +got):\n%s", diff)
	}
}

func TestCellDivision_Error(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	valid := []mat.Vec3{{0, 0, 0}, {1, 1, 1}}

	testCases := map[string]struct {
		points []mat.Vec3
		step   mat.Vec3
		err    error
	}{
		"Empty":        {points: nil, step: mat.Vec3{1, 1, 1}, err: ErrEmptyInput},
		"ZeroStepX":    {points: valid, step: mat.Vec3{0, 1, 1}, err: ErrDegenerateStep},
		"NegStepY":     {points: valid, step: mat.Vec3{1, -1, 1}, err: ErrDegenerateStep},
		"NaNStepZ":     {points: valid, step: mat.Vec3{1, 1, nan}, err: ErrDegenerateStep},
		"InfStep":      {points: valid, step: mat.Vec3{inf, 1, 1}, err: ErrDegenerateStep},
		"NaNPoint":     {points: []mat.Vec3{{0, nan, 0}}, step: mat.Vec3{1, 1, 1}, err: ErrInvalidPoint},
		"TooFineGrid":  {points: []mat.Vec3{{0, 0, 0}, {1e6, 0, 0}}, step: mat.Vec3{1e-4, 1, 1}, err: ErrGridTooLarge},
		"TooFineZGrid": {points: []mat.Vec3{{0, 0, -1e6}, {0, 0, 1e6}}, step: mat.Vec3{1, 1, 1e-3}, err: ErrGridTooLarge},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			_, err := NewCellDivision(tt.points, tt.step)
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected error: %v, got: %v", tt.err, err)
			}
		})
	}
}

func TestCellDivision_Stats(t *testing.T) {
	points := []mat.Vec3{
		{0, 0, 0},
		{0, 0, 0.5},
		{0, 0, 0.9},
		{0, 0, 1.1},
		{1, 1, 0},
	}
	d, err := NewCellDivision(points, mat.Vec3{1, 1, 1}, WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	s := d.Stats()
	if s.Points != 5 || s.Cells != 2 || s.Voxels != 3 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.Resolution != [3]int{2, 2, 2} {
		t.Errorf("Expected resolution: [2 2 2], got: %v", s.Resolution)
	}
	if s.PointsPerVoxelMax != 3 {
		t.Errorf("Expected max 3 points per voxel, got: %d", s.PointsPerVoxelMax)
	}
	if math.Abs(s.PointsPerVoxelMean-5.0/3) > 1e-9 {
		t.Errorf("Expected mean %f points per voxel, got: %f", 5.0/3, s.PointsPerVoxelMean)
	}
	// counts {3, 1, 1}: sample variance 4/3
	if math.Abs(s.PointsPerVoxelStdDev-math.Sqrt(4.0/3)) > 1e-9 {
		t.Errorf("Expected stddev %f, got: %f", math.Sqrt(4.0/3), s.PointsPerVoxelStdDev)
	}
	if math.Abs(s.Reduction-0.6) > 1e-9 {
		t.Errorf("Expected reduction 0.6, got: %f", s.Reduction)
	}
}
