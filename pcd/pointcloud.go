package pcd

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// Vec3s copies the x, y, z fields of pp.
func Vec3s(pp *pc.PointCloud) ([]mat.Vec3, error) {
	if pp.Points == 0 || len(pp.Data) == 0 {
		return nil, nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	points := make([]mat.Vec3, 0, pp.Points)
	for ; it.IsValid(); it.Incr() {
		points = append(points, it.Vec3())
	}
	return points, nil
}

// NewPointCloud returns an unorganized x, y, z float32 cloud holding points.
func NewPointCloud(points []mat.Vec3) (*pc.PointCloud, error) {
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version: 0.7,
			Fields:  []string{"x", "y", "z"},
			Size:    []int{4, 4, 4},
			Type:    []string{"F", "F", "F"},
			Count:   []int{1, 1, 1},
			Width:   len(points),
			Height:  1,
		},
		Points: len(points),
	}
	pp.Data = make([]byte, len(points)*pp.Stride())
	if len(points) == 0 {
		return pp, nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		it.SetVec3(p)
		it.Incr()
	}
	return pp, nil
}
