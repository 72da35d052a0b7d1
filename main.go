package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagConfig  = "config"
	flagVoxel   = "voxel"
	flagWorkers = "workers"
	flagMethod  = "method"
	flagDebug   = "debug"
	flagOut     = "out"
	flagDir     = "dir"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  flagConfig,
			Usage: "path to yaml config",
		},
		&cli.Float64Flag{
			Name:  flagVoxel,
			Usage: "cubic voxel size",
		},
		&cli.IntFlag{
			Name:  flagWorkers,
			Usage: "number of goroutines voxelizing cells",
		},
		&cli.StringFlag{
			Name:  flagMethod,
			Usage: "downsampling method (cells or voxelgrid)",
		},
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "enable debug logging",
		},
	}
	flags := func(extra ...cli.Flag) []cli.Flag {
		return append(append([]cli.Flag(nil), commonFlags...), extra...)
	}

	return &cli.App{
		Name:  "pcdsurface",
		Usage: "downsample point clouds into voxel mean points",
		Commands: []*cli.Command{
			{
				Name:      "downsample",
				Usage:     "write the mean points of a .pcd or .las file",
				ArgsUsage: "<input>",
				Flags: flags(&cli.StringFlag{
					Name:     flagOut,
					Usage:    "output file (.pcd, .las or .glb)",
					Required: true,
				}),
				Action: downsampleAction,
			},
			{
				Name:      "stats",
				Usage:     "print cell division statistics (always computed with the cells method)",
				ArgsUsage: "<input>",
				Flags:     flags(),
				Action:    statsAction,
			},
			{
				Name:      "console",
				Usage:     "run console commands from stdin",
				ArgsUsage: "<input>",
				Flags:     flags(),
				Action:    consoleAction,
			},
			{
				Name:      "serve",
				Usage:     "serve the mean points over HTTP",
				ArgsUsage: "<input>",
				Flags: flags(&cli.StringFlag{
					Name:  flagDir,
					Usage: "directory of static files",
					Value: ".",
				}),
				Action: serveAction,
			},
		},
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "console",
		EncoderConfig:     zap.NewDevelopmentEncoderConfig(),
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// configFromFlags loads the config file and applies flag overrides.
func configFromFlags(c *cli.Context) (*config, error) {
	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagVoxel) {
		cfg.VoxelSize = float32(c.Float64(flagVoxel))
		cfg.Step = nil
	}
	if c.IsSet(flagWorkers) {
		cfg.Workers = c.Int(flagWorkers)
	}
	if c.IsSet(flagMethod) {
		cfg.Method = c.String(flagMethod)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(c *cli.Context) (*commandContext, *config, *zap.SugaredLogger, error) {
	if c.NArg() != 1 {
		return nil, nil, nil, errors.Errorf("expected 1 input file, got %d", c.NArg())
	}
	cfg, err := configFromFlags(c)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(c.Bool(flagDebug))
	if err != nil {
		return nil, nil, nil, err
	}
	cmd := newCommandContext(newEditor(cfg, logger), cfg)
	if err := cmd.Load(c.Args().First(), cfg.step()); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "loading %q", c.Args().First())
	}
	return cmd, cfg, logger, nil
}

func downsampleAction(c *cli.Context) error {
	cmd, _, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	out := c.String(flagOut)
	if err := cmd.Export(out); err != nil {
		return errors.Wrapf(err, "saving %q", out)
	}
	logger.Infow("saved", "path", out)
	return nil
}

func statsAction(c *cli.Context) error {
	cmd, cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	s, err := cmd.Stats()
	if err != nil {
		return err
	}
	points, err := cmd.SurfacePoints()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "method: %s\nsurface points: %d\n%v\n", cfg.Method, len(points), s)
	return err
}

func consoleAction(c *cli.Context) error {
	cmd, _, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	con := &console{cmd: cmd}
	return con.Serve(os.Stdin, c.App.Writer)
}

func serveAction(c *cli.Context) error {
	cmd, cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
	defer cancel()
	return serve(ctx, cfg.Listen, newServeMux(cmd, c.String(flagDir), logger), logger)
}
