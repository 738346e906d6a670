// Command lasrc is a thin demonstration CLI around the aerosol retrieval
// core: it reads a JSON batch of per-pixel inputs, drives
// aerosol.Retrieve concurrently across the batch, and writes a JSON batch
// of results. It is scaffolding that exercises the core the way a real
// scene-level driver would, not a re-implementation of one (spec §1, §6).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/developmentseed/espa-surface-reflectance/internal/config"
	"github.com/developmentseed/espa-surface-reflectance/internal/lasrclog"
	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func satelliteKind(name string) (satellite.Kind, error) {
	switch name {
	case "landsat8":
		return satellite.Landsat8, nil
	case "landsat9":
		return satellite.Landsat9, nil
	case "sentinel2":
		return satellite.Sentinel2, nil
	default:
		return 0, fmt.Errorf("lasrc: unknown satellite %q (want landsat8, landsat9, or sentinel2)", name)
	}
}

func main() {
	flags := pflag.NewFlagSet("lasrc", pflag.ExitOnError)
	cfg := config.New(flags)

	configPath := flags.String("config", "", "path to a TOML configuration file")

	root := &cobra.Command{
		Use:   "lasrc",
		Short: "Aerosol retrieval and Lambertian atmospheric correction core",
		Long: `lasrc drives the per-pixel aerosol retriever (component C3) over a batch of
pixels read from a JSON file, reporting the retrieved AOT-550nm and
residual for each. It is a demonstration entry point around the core
retrieval subsystem, not a replacement for a scene-level production
pipeline.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Load(*configPath)
		},
		DisableAutoGenTag: true,
	}
	root.PersistentFlags().AddFlagSet(flags)

	retrieveCmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Retrieve AOT and residual for a batch of pixels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cfg)
		},
		DisableAutoGenTag: true,
	}
	root.AddCommand(retrieveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRetrieve(cfg *config.Cfg) error {
	opts := cfg.Resolve()
	logger := lasrclog.New(opts.JSONLogs, opts.Debug)

	satKind, err := satelliteKind(opts.Satellite)
	if err != nil {
		return err
	}
	if opts.LUTPath == "" {
		return fmt.Errorf("lasrc: --lut is required (path to a NetCDF LUT/coefficient file)")
	}
	if opts.InputPath == "" {
		return fmt.Errorf("lasrc: --in is required (path to a JSON pixel batch)")
	}

	store, err := lut.LoadNetCDF(opts.LUTPath)
	if err != nil {
		return fmt.Errorf("lasrc: loading LUT: %w", err)
	}
	logger.WithField("bands", store.NumBands()).Info("loaded LUT coefficient store")

	batch, err := readBatch(opts.InputPath)
	if err != nil {
		return err
	}
	logger.WithField("pixels", len(batch)).Info("read pixel batch")

	results := runBatch(context.Background(), logger, batch, satKind, store, opts.UseSemiEmpiricalKernel,
		opts.ProcessAllSentinelBands, opts.UseAlternateSentinel2WaterTTH)

	return writeResults(opts.OutputPath, results)
}
