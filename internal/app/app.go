// Package app wires configuration, storage, the run manager and the
// controllers into the hydrosphere application.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/hydrosphere/internal/managers"
	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/chrissnell/hydrosphere/pkg/plot"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger

	// Serve keeps the controllers running until shutdown instead of
	// running the configured simulation once.
	Serve bool
	// Out receives the run summary in one-shot mode.
	Out io.Writer
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
		Out:            os.Stdout,
	}
}

// Run starts the application and blocks until the run finishes or, in serve
// mode, until shutdown.
func (a *App) Run(ctx context.Context) error {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	storageManager, err := managers.NewStorageManager(ctx, cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer storageManager.Close()

	runs := managers.NewRunManager(storageManager, a.logger)

	if a.Serve {
		return a.serve(ctx, cfg, runs)
	}
	return a.runOnce(ctx, cfg, runs)
}

func (a *App) serve(ctx context.Context, cfg *config.ConfigData, runs *managers.RunManager) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controllers := cfg.Controllers
	if len(controllers) == 0 {
		a.logger.Info("no controllers configured; starting the REST server with defaults")
		controllers = []config.ControllerData{{Type: "rest", RESTServer: &config.RESTServerData{}}}
	}

	cm, err := managers.NewControllerManager(ctx, &wg, controllers, runs, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	a.logger.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}

// runOnce runs the configured simulation, prints its summary and writes the
// configured plot and frames. SIGINT/SIGTERM stop the run between steps.
func (a *App) runOnce(ctx context.Context, cfg *config.ConfigData, runs *managers.RunManager) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	params := cfg.Simulation.Parameters()
	rec, res, err := runs.Execute(ctx, params, cfg.Output.Options())
	if res == nil {
		return err
	}
	if res.Status == hydrosphere.StatusStopped {
		return fmt.Errorf("run stopped after %d steps: %w", res.Steps, err)
	}

	if rec != nil {
		a.printSummary(rec)
	}

	if path := cfg.Output.PlotPath; path != "" {
		if perr := plot.SavePNG(res, path); perr != nil {
			return fmt.Errorf("could not save plot: %w", perr)
		}
		a.logger.Infof("saved profile plot to %s", path)
	}

	if dir := cfg.Output.FramesDir; dir != "" && len(res.Frames) > 0 {
		paths, ferr := plot.SaveFrames(dir, res.Depths, res.Frames)
		if ferr != nil {
			return fmt.Errorf("could not save frames: %w", ferr)
		}
		a.logger.Infof("saved %d frames to %s", len(paths), dir)
	}

	if err != nil {
		return err
	}
	return res.Err()
}

func (a *App) printSummary(rec *storage.RunRecord) {
	s := rec.Summary
	fmt.Fprintf(a.Out, "run %s: %s after %d of %d steps\n", rec.ID, rec.Status, rec.Steps, rec.TotalSteps)
	fmt.Fprintf(a.Out, "  surface temperature  %10.2f °C\n", s.SurfaceTemperature)
	fmt.Fprintf(a.Out, "  base temperature     %10.2f °C\n", s.BaseTemperature)
	fmt.Fprintf(a.Out, "  mean temperature     %10.2f °C\n", s.MeanTemperature)
	fmt.Fprintf(a.Out, "  min / max            %10.2f / %.2f °C\n", s.MinTemperature, s.MaxTemperature)
	fmt.Fprintf(a.Out, "  ice nodes            %10d\n", s.IceNodes)
	fmt.Fprintf(a.Out, "  ice shell thickness  %10.0f m\n", s.IceShellThickness)
	fmt.Fprintf(a.Out, "  highest ice extent   %10.0f m\n", s.HighestIceExtent)
	if rec.Status == hydrosphere.StatusConverged {
		fmt.Fprintf(a.Out, "  equilibrium reached at step %d (change %.3g)\n", rec.Steps, rec.Change)
	}
}
