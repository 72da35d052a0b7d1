package voxelgrid

import (
	"context"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seqsense/pcdsurface/pcd"
	"github.com/seqsense/pcdsurface/pcd/storage/cellgrid"
)

// CellDivision partitions a point set into planar cells of Step[0] x Step[1]
// and each cell into voxels of height Step[2].
// It is built eagerly and must not be modified afterwards; use a new
// CellDivision for another step.
type CellDivision struct {
	Step     mat.Vec3
	Min, Max mat.Vec3
	X, Y, Z  cellgrid.Axis

	points  []mat.Vec3
	cells   *cellgrid.Grid[Cell]
	nVoxels int
}

type options struct {
	workers int
	logger  *zap.SugaredLogger
}

type Option func(*options)

// WithWorkers voxelizes cells on n goroutines.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func NewCellDivision(points []mat.Vec3, step mat.Vec3, opts ...Option) (*CellDivision, error) {
	o := options{
		workers: 1,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	min, max, err := pcd.MinMaxVec3(points)
	if err != nil {
		return nil, err
	}
	d := &CellDivision{
		Step:   step,
		Min:    min,
		Max:    max,
		points: points,
	}
	for i, a := range []*cellgrid.Axis{&d.X, &d.Y, &d.Z} {
		if *a, err = cellgrid.NewAxis(float64(min[i]), float64(max[i]), float64(step[i])); err != nil {
			return nil, errors.Wrapf(err, "axis %c", "xyz"[i])
		}
	}
	if err := d.divide(o.workers); err != nil {
		return nil, err
	}

	o.logger.Debugw("cell division built",
		"points", len(points),
		"resolution", d.Resolution(),
		"cells", d.cells.Len(),
		"voxels", d.nVoxels,
	)
	return d, nil
}

func (d *CellDivision) divide(workers int) error {
	d.cells = cellgrid.New[Cell](d.Y.N, d.X.N)

	for _, p := range d.points {
		q, err := d.X.Bucket(float64(p[0]))
		if err != nil {
			return err
		}
		r, err := d.Y.Bucket(float64(p[1]))
		if err != nil {
			return err
		}
		c, ok := d.cells.GetOrCreate(r, q, func() *Cell { return &Cell{} })
		if !ok {
			return errors.Wrapf(ErrIndexOutOfRange, "cell (%d, %d)", r, q)
		}
		c.Add(p)
	}

	cells := make([]*Cell, 0, d.cells.Len())
	d.cells.Each(func(_, _ int, c *Cell) {
		cells = append(cells, c)
	})
	if err := voxelize(context.Background(), cells, d.Z, workers); err != nil {
		return err
	}
	for _, c := range cells {
		d.nVoxels += len(c.voxels)
	}
	return nil
}

func voxelize(ctx context.Context, cells []*Cell, z cellgrid.Axis, workers int) error {
	if workers <= 1 {
		for _, c := range cells {
			if err := c.Voxelize(z); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range cells {
		if ctx.Err() != nil {
			break
		}
		c := c
		g.Go(func() error {
			return c.Voxelize(z)
		})
	}
	return g.Wait()
}

// Resolution returns the number of buckets along x, y and z.
func (d *CellDivision) Resolution() [3]int {
	return [3]int{d.X.N, d.Y.N, d.Z.N}
}

// Cell returns the cell at y-bucket row and x-bucket col, or nil.
func (d *CellDivision) Cell(row, col int) *Cell {
	return d.cells.Get(row, col)
}

// EachCell calls fn for each occupied cell in row-major order.
func (d *CellDivision) EachCell(fn func(row, col int, c *Cell)) {
	d.cells.Each(fn)
}

func (d *CellDivision) NumPoints() int {
	return len(d.points)
}

func (d *CellDivision) NumCells() int {
	return d.cells.Len()
}

func (d *CellDivision) NumVoxels() int {
	return d.nVoxels
}

// MeanPoints returns the centroid of every voxel, cells in row-major
// order and voxels in ascending z within a cell.
func (d *CellDivision) MeanPoints() ([]mat.Vec3, error) {
	means := make([]mat.Vec3, 0, d.nVoxels)
	var err error
	d.cells.Each(func(row, col int, c *Cell) {
		if err != nil {
			return
		}
		if means, err = c.Means(means); err != nil {
			err = errors.Wrapf(err, "cell (%d, %d)", row, col)
		}
	})
	if err != nil {
		return nil, err
	}
	return means, nil
}
