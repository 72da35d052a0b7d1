package pcd

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"go.uber.org/multierr"

	"github.com/seqsense/pcdsurface/vec"
)

var ErrUnknownFormat = errors.New("unknown point cloud format")

// Load reads the points of a .pcd or .las file in file coordinates.
func Load(path string) ([]mat.Vec3, error) {
	points, origin, err := LoadLocal(path)
	if err != nil {
		return nil, err
	}
	return Translate(points, origin), nil
}

// LoadLocal reads the points of a .pcd or .las file relative to origin.
// LAS coordinates are shifted by the whole-metre floor of their minimum
// before narrowing to float32. PCD points are already float32 and have
// zero origin.
func LoadLocal(path string) ([]mat.Vec3, r3.Vector, error) {
	switch ext(path) {
	case ".pcd":
		points, err := loadPCD(path)
		return points, r3.Vector{}, err
	case ".las":
		return loadLAS(path)
	default:
		return nil, r3.Vector{}, errors.Wrapf(ErrUnknownFormat, "do not know how to read file %q", path)
	}
}

// Save writes points to a .pcd, .las or .glb file.
func Save(path string, points []mat.Vec3) error {
	return SaveLocal(path, points, r3.Vector{})
}

// SaveLocal writes points given relative to origin.
// LAS adds origin in float64. GLB keeps the local coordinates.
func SaveLocal(path string, points []mat.Vec3, origin r3.Vector) error {
	switch ext(path) {
	case ".pcd":
		return savePCD(path, Translate(points, origin))
	case ".las":
		return saveLAS(path, points, origin)
	case ".glb":
		return SaveGLB(path, points)
	default:
		return errors.Wrapf(ErrUnknownFormat, "do not know how to write file %q", path)
	}
}

// Translate returns points shifted by origin.
// points is returned as is for zero origin.
func Translate(points []mat.Vec3, origin r3.Vector) []mat.Vec3 {
	if origin == (r3.Vector{}) {
		return points
	}
	out := make([]mat.Vec3, len(points))
	for i, p := range points {
		out[i] = vec.FromR3(vec.R3(p).Add(origin))
	}
	return out
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func loadPCD(path string) (points []mat.Vec3, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	pp, err := pc.Unmarshal(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	return Vec3s(pp)
}

func savePCD(path string, points []mat.Vec3) (err error) {
	pp, err := NewPointCloud(points)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	if err := pc.Marshal(pp, w); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	return w.Flush()
}

func loadLAS(path string) (points []mat.Vec3, origin r3.Vector, err error) {
	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return nil, r3.Vector{}, errors.Wrapf(err, "opening %q", path)
	}
	defer func() {
		err = multierr.Combine(err, lf.Close())
	}()

	coords := make([]r3.Vector, 0, lf.Header.NumberPoints)
	min := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	for i := 0; i < lf.Header.NumberPoints; i++ {
		p, err := lf.LasPoint(i)
		if err != nil {
			return nil, r3.Vector{}, errors.Wrapf(err, "reading point %d of %q", i, path)
		}
		data := p.PointData()
		v := r3.Vector{X: data.X, Y: data.Y, Z: data.Z}
		min = r3.Vector{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
		coords = append(coords, v)
	}
	if len(coords) == 0 {
		return nil, r3.Vector{}, nil
	}

	origin = r3.Vector{X: math.Floor(min.X), Y: math.Floor(min.Y), Z: math.Floor(min.Z)}
	points = make([]mat.Vec3, len(coords))
	for i, v := range coords {
		points[i] = vec.FromR3(v.Sub(origin))
	}
	return points, origin, nil
}

func saveLAS(path string, points []mat.Vec3, origin r3.Vector) (err error) {
	lf, err := lidario.NewLasFile(path, "w")
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer func() {
		err = multierr.Combine(err, lf.Close())
	}()

	if err := lf.AddHeader(lidario.LasHeader{PointFormatID: 0}); err != nil {
		return err
	}
	for _, p := range points {
		pr := &lidario.PointRecord0{
			X: float64(p[0]) + origin.X,
			Y: float64(p[1]) + origin.Y,
			Z: float64(p[2]) + origin.Z,
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3),
			},
			PointSourceID: 1,
		}
		if err := lf.AddLasPoint(pr); err != nil {
			return err
		}
	}
	return nil
}
