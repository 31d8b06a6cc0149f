package main

import (
	"context"
	"fmt"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath           string
	flagBatchSize        int
	flagBitpacksPerBatch int
	flagIterations       int
	flagWordWidth        int
	flagDevice           string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canopybench",
		Short: "Evaluate a small synthetic fault tree's root probability via Monte Carlo sampling",
		RunE:  runBench,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "sample batch size (0 = use config/default)")
	cmd.Flags().IntVar(&flagBitpacksPerBatch, "bitpacks-per-batch", 0, "bitpacks per batch (0 = use config/default)")
	cmd.Flags().IntVar(&flagIterations, "iterations", 0, "number of tally iterations (0 = use config/default)")
	cmd.Flags().IntVar(&flagWordWidth, "word-width", 0, "bit-pack word width, 8 or 64 (0 = use config/default)")
	cmd.Flags().StringVar(&flagDevice, "device", "host", "compute device to plan dispatches for: host or mlx")

	return cmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flagBatchSize > 0 {
		cfg.BatchSize = flagBatchSize
	}
	if flagBitpacksPerBatch > 0 {
		cfg.BitpacksPerBatch = flagBitpacksPerBatch
	}
	if flagIterations > 0 {
		cfg.Iterations = flagIterations
	}
	if flagWordWidth > 0 {
		cfg.WordWidth = flagWordWidth
	}

	logger := logrus.StandardLogger()
	graph, root := buildDemoGraph(cfg)

	device, err := resolveDevice(flagDevice)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		BatchSize:        cfg.BatchSize,
		BitpacksPerBatch: cfg.BitpacksPerBatch,
		Device:           device,
		Logger:           logger,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.WordWidth {
	case 8:
		p, err := pipeline.New[uint8](graph, opts)
		if err != nil {
			return err
		}
		snap, err := p.Tally(ctx, root.Index(), cfg.Iterations)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"mean":      snap.Mean,
			"std_err":   snap.StdErr,
			"ci95_low":  snap.CI95Low,
			"ci95_high": snap.CI95High,
		}).Info("canopybench: root probability estimate")
	default:
		p, err := pipeline.New[uint64](graph, opts)
		if err != nil {
			return err
		}
		snap, err := p.Tally(ctx, root.Index(), cfg.Iterations)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"mean":      snap.Mean,
			"std_err":   snap.StdErr,
			"ci95_low":  snap.CI95Low,
			"ci95_high": snap.CI95High,
		}).Info("canopybench: root probability estimate")
	}

	return nil
}

// resolveDevice builds the accel.Device the Working-Set Planner sizes
// dispatches for. "mlx" queries github.com/luxfi/mlx for the active
// backend/device, which requires a cgo build; "host" (the default) and ""
// always succeed; any other name is an error.
func resolveDevice(name string) (accel.Device, error) {
	switch name {
	case "", "host":
		return accel.NewHostDevice(), nil
	case "mlx":
		return accel.NewMLXDevice()
	default:
		return nil, fmt.Errorf("canopybench: unknown --device %q (want host or mlx)", name)
	}
}
