package voxelgrid

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	Points     int
	Cells      int
	Voxels     int
	Resolution [3]int

	// Ratio of output to input points.
	Reduction float64

	PointsPerVoxelMean   float64
	PointsPerVoxelStdDev float64
	PointsPerVoxelMax    int
}

func (d *CellDivision) Stats() Stats {
	counts := make([]float64, 0, d.nVoxels)
	var maxCount int
	d.cells.Each(func(_, _ int, c *Cell) {
		for _, v := range c.voxels {
			counts = append(counts, float64(v.Count))
			if v.Count > maxCount {
				maxCount = v.Count
			}
		}
	})

	s := Stats{
		Points:            d.NumPoints(),
		Cells:             d.cells.Len(),
		Voxels:            d.nVoxels,
		Resolution:        d.Resolution(),
		PointsPerVoxelMax: maxCount,
	}
	if s.Points > 0 {
		s.Reduction = float64(s.Voxels) / float64(s.Points)
	}
	if len(counts) > 0 {
		s.PointsPerVoxelMean = stat.Mean(counts, nil)
	}
	if len(counts) > 1 {
		s.PointsPerVoxelStdDev = stat.StdDev(counts, nil)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"points: %d\ncells: %d\nvoxels: %d\nresolution: %d x %d x %d\nreduction: %.4f\npoints per voxel: mean %.3f, stddev %.3f, max %d",
		s.Points, s.Cells, s.Voxels,
		s.Resolution[0], s.Resolution[1], s.Resolution[2],
		s.Reduction,
		s.PointsPerVoxelMean, s.PointsPerVoxelStdDev, s.PointsPerVoxelMax,
	)
}
