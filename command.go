package main

import (
	"bytes"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/storage/kdtree"

	"github.com/seqsense/pcdsurface/pcd"
	"github.com/seqsense/pcdsurface/pcd/filter/voxelgrid"
)

const (
	nearestRange = 1e6
)

var errPresetIndex = errors.New("voxel preset index out of range")

type commandContext struct {
	*editor
	presets []float32
	preset  int

	// origin of the raw cloud in file coordinates.
	origin r3.Vector

	// nearest returns the index of the surface point closest to p, or -1.
	nearest   func(p mat.Vec3) int
	kdtPoints pc.Vec3Slice
}

func newCommandContext(e *editor, cfg *config) *commandContext {
	c := &commandContext{
		editor:  e,
		presets: cfg.VoxelSizes,
	}
	c.selectPreset(cfg.VoxelSize)
	return c
}

// selectPreset selects the preset equal to d, or none.
func (c *commandContext) selectPreset(d float32) {
	c.preset = -1
	for i, s := range c.presets {
		if s == d {
			c.preset = i
		}
	}
}

// Load replaces the raw cloud and builds the surface with step.
// Points are kept relative to the file's origin.
func (c *commandContext) Load(path string, step mat.Vec3) error {
	points, origin, err := pcd.LoadLocal(path)
	if err != nil {
		return err
	}
	pp, err := pcd.NewPointCloud(points)
	if err != nil {
		return err
	}
	if err := c.ImportPCD(pp, step); err != nil {
		return err
	}
	c.origin = origin
	return nil
}

func (c *commandContext) ImportPCD(pp *pc.PointCloud, step mat.Vec3) error {
	if err := c.editor.SetPointCloud(pp); err != nil {
		return err
	}
	c.origin = r3.Vector{}
	return c.SetStep(step)
}

func (c *commandContext) Origin() r3.Vector {
	return c.origin
}

func (c *commandContext) SetStep(step mat.Vec3) error {
	if err := c.editor.SetStep(step); err != nil {
		return err
	}
	c.nearest = nil
	return nil
}

func (c *commandContext) VoxelSize() (float32, bool) {
	s, ok := c.Surface()
	if !ok {
		return 0, false
	}
	return s.step[0], true
}

func (c *commandContext) SetVoxelSize(d float32) error {
	if err := c.SetStep(mat.Vec3{d, d, d}); err != nil {
		return err
	}
	c.selectPreset(d)
	return nil
}

func (c *commandContext) VoxelPreset() int {
	return c.preset
}

func (c *commandContext) SetVoxelPreset(i int) error {
	if i < 0 || len(c.presets) <= i {
		return errPresetIndex
	}
	return c.SetVoxelSize(c.presets[i])
}

func (c *commandContext) Undo() bool {
	if !c.editor.Undo() {
		return false
	}
	c.nearest = nil
	if d, ok := c.VoxelSize(); ok {
		c.selectPreset(d)
	}
	return true
}

func (c *commandContext) MaxHistory() int {
	return c.editor.MaxHistory()
}

func (c *commandContext) SetMaxHistory(m int) bool {
	if m < 0 {
		return false
	}
	c.editor.SetMaxHistory(m)
	return true
}

func (c *commandContext) SurfacePoints() ([]mat.Vec3, error) {
	s, ok := c.Surface()
	if !ok {
		return nil, errNoPointCloud
	}
	return pcd.Vec3s(s.pp)
}

// Nearest returns the surface point closest to p.
func (c *commandContext) Nearest(p mat.Vec3) (mat.Vec3, bool) {
	s, ok := c.Surface()
	if !ok || s.pp.Points == 0 {
		return mat.Vec3{}, false
	}
	if c.nearest == nil {
		it, err := s.pp.Vec3Iterator()
		if err != nil {
			return mat.Vec3{}, false
		}
		c.kdtPoints = make(pc.Vec3Slice, 0, it.Len())
		for ; it.IsValid(); it.Incr() {
			c.kdtPoints = append(c.kdtPoints, it.Vec3())
		}
		kdt := kdtree.New(c.kdtPoints)
		c.nearest = func(p mat.Vec3) int {
			return kdt.Nearest(p, nearestRange).ID
		}
	}
	id := c.nearest(p)
	if id < 0 {
		return mat.Vec3{}, false
	}
	return c.kdtPoints[id], true
}

func (c *commandContext) Stats() (voxelgrid.Stats, error) {
	d, err := c.CellDivision()
	if err != nil {
		return voxelgrid.Stats{}, err
	}
	return d.Stats(), nil
}

func (c *commandContext) Export(path string) error {
	points, err := c.SurfacePoints()
	if err != nil {
		return err
	}
	return pcd.SaveLocal(path, points, c.origin)
}

// ExportPCD writes the surface in binary PCD format, in file coordinates.
func (c *commandContext) ExportPCD(w io.Writer) error {
	s, ok := c.Surface()
	if !ok {
		return errNoPointCloud
	}
	pp := s.pp
	if c.origin != (r3.Vector{}) {
		points, err := pcd.Vec3s(pp)
		if err != nil {
			return err
		}
		if pp, err = pcd.NewPointCloud(pcd.Translate(points, c.origin)); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := pc.Marshal(pp, &buf); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
