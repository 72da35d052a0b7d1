package main

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	pcgolvg "github.com/seqsense/pcgol/pc/filter/voxelgrid"
	"go.uber.org/zap"

	"github.com/seqsense/pcdsurface/pcd"
	"github.com/seqsense/pcdsurface/pcd/filter"
	"github.com/seqsense/pcdsurface/pcd/filter/voxelgrid"
	"github.com/seqsense/pcdsurface/pcd/storage/cellgrid"
)

var errNoPointCloud = errors.New("no pointcloud")

// maxVoxelGridSize bounds the dense voxel array allocated by the
// voxelgrid method.
const maxVoxelGridSize = 1 << 28

// editor holds the raw cloud and the surface computed from it.
// Surfaces are always rebuilt from the raw cloud, never from
// a previous surface.
type editor struct {
	history
	raw      []mat.Vec3
	min, max mat.Vec3
	pp       *pc.PointCloud
	cur      *surface

	method  string
	workers int
	logger  *zap.SugaredLogger
}

func newEditor(cfg *config, logger *zap.SugaredLogger) *editor {
	return &editor{
		history: newHistory(cfg.MaxHistory),
		method:  cfg.Method,
		workers: cfg.Workers,
		logger:  logger,
	}
}

func (e *editor) SetPointCloud(pp *pc.PointCloud) error {
	points, err := pcd.Vec3s(pp)
	if err != nil {
		return err
	}
	min, max, err := pcd.MinMaxVec3(points)
	if err != nil {
		return err
	}
	xyz, err := pcd.NewPointCloud(points)
	if err != nil {
		return err
	}
	e.clear()
	e.raw = points
	e.min, e.max = min, max
	e.pp = xyz
	e.cur = nil
	runtime.GC()
	return nil
}

func (e *editor) filter(step mat.Vec3) filter.Filter {
	switch e.method {
	case methodVoxelGrid:
		return pcgolvg.New(step)
	default:
		return voxelgrid.New(step,
			voxelgrid.WithWorkers(e.workers),
			voxelgrid.WithLogger(e.logger),
		)
	}
}

// SetStep rebuilds the surface with a new voxel step.
// The current surface is kept on failure.
func (e *editor) SetStep(step mat.Vec3) error {
	if e.pp == nil {
		return errNoPointCloud
	}
	size := 1
	for i, d := range step {
		a, err := cellgrid.NewAxis(float64(e.min[i]), float64(e.max[i]), float64(d))
		if err != nil {
			return errors.Wrapf(err, "axis %c", "xyz"[i])
		}
		if size <= maxVoxelGridSize {
			size *= a.N
		}
	}
	if e.method == methodVoxelGrid && size > maxVoxelGridSize {
		return errors.Wrapf(voxelgrid.ErrGridTooLarge, "%d voxels with step %v", size, step)
	}
	out, err := e.filter(step).Filter(e.pp)
	if err != nil {
		return errors.Wrapf(err, "downsampling with step %v", step)
	}
	e.cur = e.push(&surface{step: step, pp: out})
	e.logger.Infow("surface updated",
		"method", e.method,
		"step", step,
		"points", len(e.raw),
		"surface", out.Points,
	)
	return nil
}

func (e *editor) Surface() (*surface, bool) {
	return e.cur, e.cur != nil
}

func (e *editor) Undo() bool {
	s, ok := e.history.undo()
	if ok {
		e.cur = s
	}
	return ok
}

// CellDivision builds the cell division of the raw cloud with the current step.
func (e *editor) CellDivision() (*voxelgrid.CellDivision, error) {
	if e.cur == nil {
		return nil, errNoPointCloud
	}
	return voxelgrid.NewCellDivision(e.raw, e.cur.step,
		voxelgrid.WithWorkers(e.workers),
		voxelgrid.WithLogger(e.logger),
	)
}
