package voxelgrid

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pcdsurface/pcd/storage/cellgrid"
)

// Cell is a vertical column of points sharing one planar grid cell.
type Cell struct {
	ZMin, ZMax float32

	points []mat.Vec3
	voxels []Voxel
}

func (c *Cell) Len() int {
	return len(c.points)
}

func (c *Cell) Add(p mat.Vec3) {
	if len(c.points) == 0 {
		c.ZMin, c.ZMax = p[2], p[2]
	} else if p[2] < c.ZMin {
		c.ZMin = p[2]
	} else if p[2] > c.ZMax {
		c.ZMax = p[2]
	}
	c.points = append(c.points, p)
}

// Voxelize sorts the points by z and splits them into contiguous voxels.
// z must be the axis of the whole grid, not of this cell, so that bucket
// indices agree across cells.
func (c *Cell) Voxelize(z cellgrid.Axis) error {
	sort.SliceStable(c.points, func(i, j int) bool {
		return c.points[i][2] < c.points[j][2]
	})

	c.voxels = c.voxels[:0]
	for i, p := range c.points {
		k, err := z.Bucket(float64(p[2]))
		if err != nil {
			return err
		}
		if n := len(c.voxels); n > 0 {
			v := &c.voxels[n-1]
			if v.Bucket == k {
				v.Max = i
				v.Count++
				continue
			}
			if v.Bucket > k {
				return errors.Wrapf(ErrIndexOutOfRange, "bucket %d after %d", k, v.Bucket)
			}
		}
		c.voxels = append(c.voxels, Voxel{
			Bucket: k,
			Min:    i,
			Max:    i,
			Count:  1,
			points: c.points,
		})
	}
	return nil
}

// Voxels returns the occupied voxels in ascending bucket order.
func (c *Cell) Voxels() []Voxel {
	return c.voxels
}

// Voxel returns the voxel of z-bucket k.
func (c *Cell) Voxel(k int) (Voxel, bool) {
	i := sort.Search(len(c.voxels), func(i int) bool {
		return c.voxels[i].Bucket >= k
	})
	if i < len(c.voxels) && c.voxels[i].Bucket == k {
		return c.voxels[i], true
	}
	return Voxel{}, false
}

// LowestVoxel returns the lowest occupied z-bucket or -1.
func (c *Cell) LowestVoxel() int {
	if len(c.voxels) == 0 {
		return -1
	}
	return c.voxels[0].Bucket
}

// Points returns the points of all voxels in voxel order.
func (c *Cell) Points() []mat.Vec3 {
	var points []mat.Vec3
	for _, v := range c.voxels {
		points = append(points, v.Points()...)
	}
	return points
}

// Means appends the centroid of each voxel to dst.
func (c *Cell) Means(dst []mat.Vec3) ([]mat.Vec3, error) {
	for _, v := range c.voxels {
		m, err := v.Mean()
		if err != nil {
			return nil, err
		}
		dst = append(dst, m)
	}
	return dst, nil
}
