package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/internal/logging"
	"github.com/timtroendle/possibility-for-electricity-autarky/internal/server"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/config"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/source"
)

// app carries what every command needs once the root command has loaded
// the configuration.
type app struct {
	configPath string
	workers    int
	cacheTTL   time.Duration
	timeout    time.Duration

	cfg     *config.Config
	logger  *zap.Logger
	fetcher source.Fetcher
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "autarky",
		Short:         "Renewable electricity potentials of European administrative units",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logging.Sync()
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "study configuration file (default ./autarky.yaml or ./configs/autarky.yaml)")
	flags.IntVarP(&a.workers, "workers", "w", 0, "parallel workers, 0 uses the configured value or all CPUs")
	flags.DurationVar(&a.cacheTTL, "cache-ttl", 10*time.Minute, "how long fetched inputs are cached")
	flags.DurationVar(&a.timeout, "timeout", time.Minute, "timeout of remote input downloads")

	rootCmd.AddCommand(a.classifyCmd())
	rootCmd.AddCommand(a.areasCmd())
	rootCmd.AddCommand(a.waterCmd())
	rootCmd.AddCommand(a.potentialsCmd())
	rootCmd.AddCommand(a.constrainCmd())
	rootCmd.AddCommand(a.rasterPotentialsCmd())
	rootCmd.AddCommand(a.sharedCoastCmd())
	rootCmd.AddCommand(a.allocateEEZCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// skipValidation marks commands that load an invalid configuration to
// report on it.
const skipValidation = "skip-validation"

func (a *app) setup(cmd *cobra.Command) error {
	load := config.Load
	if _, ok := cmd.Annotations[skipValidation]; ok {
		load = config.Read
	}
	cfg, err := load(a.configPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	if a.workers == 0 {
		a.workers = cfg.Workers
	}
	a.cfg = cfg
	a.logger = logging.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("command", cmd.Name()),
	)
	a.fetcher = source.NewCached(source.NewRouter(a.timeout), a.cacheTTL, a.logger)
	return nil
}

func (a *app) classifyCmd() *cobra.Command {
	var stackURI, out string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify every pixel of a raster stack into an eligibility category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClassify(cmd.Context(), stackURI, out)
		},
	}
	cmd.Flags().StringVar(&stackURI, "stack", "", "input raster stack with land cover, slope, bathymetry, protected areas, building and urban green shares")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output raster stack")
	_ = cmd.MarkFlagRequired("stack")
	return cmd
}

func (a *app) areasCmd() *cobra.Command {
	var stackURI, unitsURI, referenceURI, out string
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Sum technically eligible area per unit and eligibility category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAreas(cmd.Context(), stackURI, unitsURI, referenceURI, out)
		},
	}
	cmd.Flags().StringVar(&stackURI, "stack", "", "classified raster stack with building share")
	cmd.Flags().StringVar(&unitsURI, "units", "", "units GeoJSON")
	cmd.Flags().StringVar(&referenceURI, "unit-areas", "", "optional CSV with an area_km2 column to check area conservation against")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV")
	_ = cmd.MarkFlagRequired("stack")
	_ = cmd.MarkFlagRequired("units")
	return cmd
}

func (a *app) waterCmd() *cobra.Command {
	var stackURI, unitsURI, out string
	cmd := &cobra.Command{
		Use:   "water",
		Short: "Count water, non-water and nodata land cover pixels per unit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWater(cmd.Context(), stackURI, unitsURI, out)
		},
	}
	cmd.Flags().StringVar(&stackURI, "stack", "", "raster stack with land cover")
	cmd.Flags().StringVar(&unitsURI, "units", "", "units GeoJSON")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV")
	_ = cmd.MarkFlagRequired("stack")
	_ = cmd.MarkFlagRequired("units")
	return cmd
}

func (a *app) potentialsCmd() *cobra.Command {
	var areasURI, cfURI, unitsURI, regionsURI, prefer, out string
	cmd := &cobra.Command{
		Use:   "potentials",
		Short: "Compute unconstrained annual yields per unit and eligibility category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			preferPV, err := parsePreference(prefer)
			if err != nil {
				return err
			}
			return a.runPotentials(cmd.Context(), areasURI, cfURI, unitsURI, regionsURI, preferPV, out)
		},
	}
	cmd.Flags().StringVar(&areasURI, "areas", "", "eligible areas CSV")
	cmd.Flags().StringVar(&cfURI, "capacity-factors", "", "capacity factors CSV, per unit or per region")
	cmd.Flags().StringVar(&unitsURI, "units", "", "units GeoJSON, used for country fallbacks")
	cmd.Flags().StringVar(&regionsURI, "regions", "", "optional capacity factor regions GeoJSON; capacity factors are then given per region")
	cmd.Flags().StringVar(&prefer, "prefer", "pv", "technology built on land eligible for both: pv or wind")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV")
	_ = cmd.MarkFlagRequired("areas")
	_ = cmd.MarkFlagRequired("capacity-factors")
	_ = cmd.MarkFlagRequired("units")
	return cmd
}

func (a *app) constrainCmd() *cobra.Command {
	var pvURI, windURI, scenarioName, techOut, out string
	cmd := &cobra.Command{
		Use:   "constrain",
		Short: "Limit unconstrained potentials to the shares a scenario allows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConstrain(cmd.Context(), pvURI, windURI, scenarioName, out, techOut)
		},
	}
	cmd.Flags().StringVar(&pvURI, "prefer-pv", "", "unconstrained potentials CSV computed preferring pv")
	cmd.Flags().StringVar(&windURI, "prefer-wind", "", "unconstrained potentials CSV computed preferring wind (defaults to --prefer-pv)")
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "scenario name")
	cmd.Flags().StringVar(&techOut, "technologies", "", "optional output CSV of potentials per technology")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV")
	_ = cmd.MarkFlagRequired("prefer-pv")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func (a *app) rasterPotentialsCmd() *cobra.Command {
	var stackURI, unitsURI, scenarioName, stackOut, out string
	cmd := &cobra.Command{
		Use:   "raster-potentials",
		Short: "Compute constrained per-pixel yields and sum them per unit and technology",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRasterPotentials(cmd.Context(), stackURI, unitsURI, scenarioName, out, stackOut)
		},
	}
	cmd.Flags().StringVar(&stackURI, "stack", "", "classified raster stack with building share and capacity factor layers")
	cmd.Flags().StringVar(&unitsURI, "units", "", "units GeoJSON")
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "scenario name")
	cmd.Flags().StringVar(&stackOut, "stack-out", "", "optional output raster stack with the pv and wind yield layers")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV")
	_ = cmd.MarkFlagRequired("stack")
	_ = cmd.MarkFlagRequired("units")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func (a *app) sharedCoastCmd() *cobra.Command {
	var unitsURI, eezURI, eezTableURI, out string
	cmd := &cobra.Command{
		Use:   "shared-coast",
		Short: "Compute the share of every EEZ that goes to each unit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSharedCoast(cmd.Context(), unitsURI, eezURI, eezTableURI, out)
		},
	}
	cmd.Flags().StringVar(&unitsURI, "units", "", "units GeoJSON")
	cmd.Flags().StringVar(&eezURI, "eez", "", "EEZ GeoJSON")
	cmd.Flags().StringVar(&eezTableURI, "eez-table", "", "optional EEZ eligible areas CSV, used to report the area of dropped EEZs")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV, units x EEZs")
	_ = cmd.MarkFlagRequired("units")
	_ = cmd.MarkFlagRequired("eez")
	return cmd
}

func (a *app) allocateEEZCmd() *cobra.Command {
	var matrixURI, eezTableURI, onshoreURI, out string
	cmd := &cobra.Command{
		Use:   "allocate-eez",
		Short: "Allocate EEZ quantities to units and merge them with onshore quantities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAllocateEEZ(cmd.Context(), matrixURI, eezTableURI, onshoreURI, out)
		},
	}
	cmd.Flags().StringVar(&matrixURI, "matrix", "", "shared coast matrix CSV")
	cmd.Flags().StringVar(&eezTableURI, "eez-table", "", "per-EEZ quantities CSV")
	cmd.Flags().StringVar(&onshoreURI, "onshore", "", "optional per-unit onshore CSV to merge the allocation into")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV")
	_ = cmd.MarkFlagRequired("matrix")
	_ = cmd.MarkFlagRequired("eez-table")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate the study configuration",
		Annotations: map[string]string{skipValidation: "true"},
		RunE: func(*cobra.Command, []string) error {
			return a.runValidate(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var port int
	var potentialsDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a local read-only server for scenarios and constrained potentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := server.New(a.cfg, potentialsDir, port, a.logger)
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	cmd.Flags().StringVar(&potentialsDir, "potentials", ".", "directory holding <scenario>.csv constrained potentials")
	return cmd
}
