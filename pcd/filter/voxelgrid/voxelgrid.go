package voxelgrid

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"

	"github.com/seqsense/pcdsurface/pcd"
	"github.com/seqsense/pcdsurface/pcd/filter"
)

type Options struct {
	LeafSize mat.Vec3
}

type voxelGrid struct {
	Options
	opts []Option
}

// New returns a filter replacing the points of each voxel by their mean.
// Only the x, y, z fields are kept.
func New(leafSize mat.Vec3, opts ...Option) filter.Filter {
	vg := &voxelGrid{
		Options: Options{
			LeafSize: leafSize,
		},
		opts: opts,
	}
	return vg
}

func (f *voxelGrid) Filter(pp *pc.PointCloud) (*pc.PointCloud, error) {
	points, err := pcd.Vec3s(pp)
	if err != nil {
		return nil, err
	}
	d, err := NewCellDivision(points, f.LeafSize, f.opts...)
	if err != nil {
		return nil, err
	}
	means, err := d.MeanPoints()
	if err != nil {
		return nil, err
	}
	return pcd.NewPointCloud(means)
}
