package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
)

type console struct {
	cmd *commandContext
}

var errArgumentNumber = errors.New("invalid number of arguments")
var errInvalidCommand = errors.New("invalid command")

var consoleCommands = map[string]func(cmd *commandContext, args []float32) ([][]float32, error){
	"voxel_size": func(cmd *commandContext, args []float32) ([][]float32, error) {
		switch len(args) {
		case 0:
		case 1:
			if err := cmd.SetVoxelSize(args[0]); err != nil {
				return nil, err
			}
		default:
			return nil, errArgumentNumber
		}
		d, ok := cmd.VoxelSize()
		if !ok {
			return nil, errNoPointCloud
		}
		return [][]float32{{d}}, nil
	},
	"voxel_preset": func(cmd *commandContext, args []float32) ([][]float32, error) {
		switch len(args) {
		case 0:
			var res [][]float32
			for i, s := range cmd.presets {
				res = append(res, []float32{float32(i), s})
			}
			return res, nil
		case 1:
			if err := cmd.SetVoxelPreset(int(args[0])); err != nil {
				return nil, err
			}
			return [][]float32{{float32(cmd.VoxelPreset()), cmd.presets[cmd.VoxelPreset()]}}, nil
		default:
			return nil, errArgumentNumber
		}
	},
	"points": func(cmd *commandContext, args []float32) ([][]float32, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		points, err := cmd.SurfacePoints()
		if err != nil {
			return nil, err
		}
		res := make([][]float32, 0, len(points))
		for _, p := range points {
			res = append(res, []float32{p[0], p[1], p[2]})
		}
		return res, nil
	},
	"stats": func(cmd *commandContext, args []float32) ([][]float32, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		s, err := cmd.Stats()
		if err != nil {
			return nil, err
		}
		return [][]float32{
			{float32(s.Points), float32(s.Cells), float32(s.Voxels)},
			{float32(s.Resolution[0]), float32(s.Resolution[1]), float32(s.Resolution[2])},
			{float32(s.PointsPerVoxelMean), float32(s.PointsPerVoxelStdDev), float32(s.PointsPerVoxelMax)},
		}, nil
	},
	"nearest": func(cmd *commandContext, args []float32) ([][]float32, error) {
		if len(args) != 3 {
			return nil, errArgumentNumber
		}
		p, ok := cmd.Nearest(mat.Vec3{args[0], args[1], args[2]})
		if !ok {
			return nil, errors.New("no point found")
		}
		return [][]float32{{p[0], p[1], p[2]}}, nil
	},
	"max_history": func(cmd *commandContext, args []float32) ([][]float32, error) {
		switch len(args) {
		case 0:
		case 1:
			if !cmd.SetMaxHistory(int(args[0])) {
				return nil, errors.New("max history must not be negative")
			}
		default:
			return nil, errArgumentNumber
		}
		return [][]float32{{float32(cmd.MaxHistory())}}, nil
	},
	"origin": func(cmd *commandContext, args []float32) ([][]float32, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		o := cmd.Origin()
		return [][]float32{{float32(o.X), float32(o.Y), float32(o.Z)}}, nil
	},
	"undo": func(cmd *commandContext, args []float32) ([][]float32, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		if !cmd.Undo() {
			return nil, errors.New("no history")
		}
		d, _ := cmd.VoxelSize()
		return [][]float32{{d}}, nil
	},
}

func (c *console) Run(line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	fn, ok := consoleCommands[args[0]]
	if !ok {
		return "", errInvalidCommand
	}
	var argsFloat []float32
	for i := 1; i < len(args); i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return "", err
		}
		argsFloat = append(argsFloat, float32(f))
	}
	res, err := fn(c.cmd, argsFloat)
	if err != nil {
		return "", err
	}
	var resStr []string
	for _, vv := range res {
		var resLine []string
		for _, v := range vv {
			resLine = append(resLine, strconv.FormatFloat(float64(v), 'f', 3, 32))
		}
		resStr = append(resStr, strings.Join(resLine, " "))
	}
	return strings.Join(resStr, "\n"), nil
}

// Serve runs console commands line by line until r is closed.
func (c *console) Serve(r io.Reader, w io.Writer) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		res, err := c.Run(s.Text())
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if res != "" {
			fmt.Fprintln(w, res)
		}
	}
	return s.Err()
}
