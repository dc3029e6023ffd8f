package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reaper/internal/app"
	"reaper/internal/config"
	dockerengine "reaper/internal/engine"
	apperrors "reaper/internal/errors"
	"reaper/internal/state"
	"reaper/internal/ui"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "reaper",
	Short:   "Reaper - generational garbage collector for Docker containers and images",
	Version: version,
	Long: `Reaper reclaims disk space on a container host by removing stopped containers
and unreferenced images that have been idle across two consecutive collection
cycles. It is meant to be invoked periodically (for example from a timer) and
is safe to run unattended.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one collection cycle",
	Long: `Run executes one mark-and-sweep cycle: stopped containers observed as exited
in two consecutive cycles are removed, then images that survived the previous
cycle and are no longer referenced by any kept container are removed.

A cycle started less than the minimum interval after the previous one is
skipped unless --force is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			apperrors.HandleError(apperrors.NewConfigError(
				"Failed to load configuration",
				err.Error(),
				"Check the config file and flag values",
				err))
			os.Exit(1)
		}

		force, _ := cmd.Flags().GetBool("force")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		engine, err := dockerengine.NewDockerEngine()
		if err != nil {
			apperrors.HandleError(apperrors.NewEngineError(
				"Cannot reach the Docker daemon",
				err.Error(),
				"Check that Docker is running and DOCKER_HOST is set correctly",
				err))
			os.Exit(1)
		}

		store, err := state.Open(cfg.StateBackend, cfg.StateDir)
		if err != nil {
			apperrors.HandleError(apperrors.NewStateError(
				"Cannot open the state store",
				err.Error(),
				fmt.Sprintf("Check that %s is writable", cfg.StateDir),
				err))
			os.Exit(1)
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close state store", "error", err)
			}
		}()

		report, err := app.New(engine, store, cfg).Run(context.Background(), force, dryRun)
		if err != nil {
			apperrors.HandleError(err)
			os.Exit(1)
		}

		slog.Info("Run finished", "runId", report.RunID, "duration", report.Duration,
			"skipped", report.Skipped, "bootstrapped", report.Bootstrapped)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bookkeeping state without touching the engine",
	Long: `Status prints the last-run time and the sizes of the persisted generational
sets. It reads only the state store and never contacts the Docker daemon.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		store, err := state.Open(cfg.StateBackend, cfg.StateDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		defer store.Close()

		console := ui.NewConsole()

		lastRun, err := store.LastRun(state.MarkerLastRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if lastRun.IsZero() {
			console.PrintInfo("No previous run recorded; the next cycle will seed a baseline and delete nothing.")
		} else {
			console.PrintInfo(fmt.Sprintf("Last run: %s (%s ago)",
				lastRun.Format(time.RFC3339), time.Since(lastRun).Round(time.Second)))
		}

		exited, err := store.ReadSet(state.SetExitedContainers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		images, err := store.ReadSet(state.SetAllImages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		console.PrintInfo(fmt.Sprintf("Tracked exited containers: %d", len(exited)))
		console.PrintInfo(fmt.Sprintf("Tracked images: %d", len(images)))
	},
}

// loadConfig loads the configuration and applies any flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("state-dir") {
		cfg.StateDir, _ = cmd.Flags().GetString("state-dir")
	}
	if cmd.Flags().Changed("state-backend") {
		cfg.StateBackend, _ = cmd.Flags().GetString("state-backend")
	}
	if cmd.Flags().Changed("min-interval") {
		cfg.MinInterval, _ = cmd.Flags().GetDuration("min-interval")
	}

	return cfg, nil
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "f", "", "Path to an optional YAML config file")
	cmd.Flags().String("state-dir", "", "Directory holding the generational state (default: per-user data dir)")
	cmd.Flags().String("state-backend", "", "State persistence backend: file or sqlite")
}

func init() {
	addConfigFlags(runCmd)
	runCmd.Flags().Duration("min-interval", time.Hour, "Minimum wall-clock time between cycles")
	runCmd.Flags().Bool("force", false, "Run even if the minimum interval has not elapsed")
	runCmd.Flags().Bool("dry-run", false, "Report what would be removed without deleting or advancing state")
	rootCmd.AddCommand(runCmd)

	addConfigFlags(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
