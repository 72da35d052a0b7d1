package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
	"gopkg.in/yaml.v3"
)

const (
	methodCells     = "cells"
	methodVoxelGrid = "voxelgrid"

	defaultVoxelSize  = 0.25
	defaultMaxHistory = 4
	defaultListen     = ":8080"
)

var defaultVoxelSizes = []float32{0.125, 0.25, 0.5, 1}

type config struct {
	VoxelSizes []float32 `yaml:"voxel_sizes"`
	VoxelSize  float32   `yaml:"voxel_size"`
	Step       []float32 `yaml:"step"`
	Method     string    `yaml:"method"`
	Workers    int       `yaml:"workers"`
	MaxHistory int       `yaml:"max_history"`
	Listen     string    `yaml:"listen"`
}

func defaultConfig() *config {
	return &config{
		VoxelSizes: append([]float32(nil), defaultVoxelSizes...),
		VoxelSize:  defaultVoxelSize,
		Method:     methodCells,
		Workers:    1,
		MaxHistory: defaultMaxHistory,
		Listen:     defaultListen,
	}
}

// loadConfig reads a yaml config over the defaults.
// Empty path returns the defaults.
func loadConfig(path string) (*config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	if err := c.validate(); err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	return c, nil
}

func (c *config) validate() error {
	if len(c.VoxelSizes) == 0 {
		return errors.New("voxel_sizes must not be empty")
	}
	for _, s := range c.VoxelSizes {
		if !(s > 0) {
			return errors.Errorf("voxel size must be positive, got %v", s)
		}
	}
	if !(c.VoxelSize > 0) {
		return errors.Errorf("voxel_size must be positive, got %v", c.VoxelSize)
	}
	switch len(c.Step) {
	case 0:
	case 3:
		for _, s := range c.Step {
			if !(s > 0) {
				return errors.Errorf("step must be positive, got %v", c.Step)
			}
		}
	default:
		return errors.Errorf("step must have 3 elements, got %d", len(c.Step))
	}
	switch c.Method {
	case methodCells, methodVoxelGrid:
	default:
		return errors.Errorf("unknown method %q", c.Method)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxHistory < 0 {
		return errors.Errorf("max_history must not be negative, got %d", c.MaxHistory)
	}
	return nil
}

// step returns the initial voxel step.
// Explicit step has priority over the cubic voxel_size.
func (c *config) step() mat.Vec3 {
	if len(c.Step) == 3 {
		return mat.Vec3{c.Step[0], c.Step[1], c.Step[2]}
	}
	return mat.Vec3{c.VoxelSize, c.VoxelSize, c.VoxelSize}
}
