package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/termstat/termstat/internal/collect"
	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/harvesters"
	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/services"
	"github.com/termstat/termstat/internal/timeseries"
	"github.com/termstat/termstat/internal/ui"
	"github.com/termstat/termstat/internal/utils"
	"github.com/termstat/termstat/pkg/file"
)

const processWorkers = 10

func main() {
	var (
		configPath string
		interval   time.Duration
		retention  time.Duration
		logLevel   string
		headless   bool
	)

	root := &cobra.Command{
		Use:   "termstat",
		Short: "Terminal system monitor",
		Long:  "termstat polls CPU, memory, network, disk, temperature, battery, and process metrics and renders them as a live terminal dashboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, interval, retention, logLevel, headless)
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the monitor configuration file")
	root.Flags().DurationVarP(&interval, "interval", "i", 0, "sampling interval (overrides config)")
	root.Flags().DurationVarP(&retention, "retention", "r", 0, "graph history retention (overrides config)")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	root.Flags().BoolVar(&headless, "headless", false, "run the collection loop without the dashboard")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, interval, retention time.Duration, logLevel string, headless bool) error {
	fileClient := file.NewFileService()

	config, err := utils.LoadMonitorConfig(configPath, fileClient)
	if err != nil {
		return err
	}
	if interval > 0 {
		config.Interval = models.Duration(interval)
	}
	if retention > 0 {
		config.Retention = models.Duration(retention)
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if err := config.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(config.LogLevel, headless)
	if err != nil {
		return err
	}

	// Filter compilation and mode parsing fail fast, before the scheduler
	// ever starts.
	filterSet, err := filters.NewSet(config)
	if err != nil {
		return err
	}
	normalization, err := models.ParseCPUNormalization(config.CPUNormalization)
	if err != nil {
		return err
	}
	scale, err := models.ParseTemperatureScale(config.TemperatureScale)
	if err != nil {
		return err
	}

	pool := utils.NewWorkerPool(processWorkers)
	defer pool.Shutdown()

	source := harvesters.NewGopsutilSource(logger, pool)
	collector := collect.NewCollector(source, collect.NewUserTable(), logger, collect.Options{
		Normalization:    normalization,
		TemperatureScale: scale,
		TreeGrouping:     config.Process.TreeGrouping,
		MergeSameName:    config.Process.MergeSameName,
	})

	store := timeseries.NewStore(config.Retention.Std())
	svc := services.NewCollectionService(config.Interval.Std(), config.DomainMask(), filterSet, collector, store, logger)

	if err := svc.Start(); err != nil {
		return err
	}
	defer svc.Stop()

	if headless {
		stopCh := make(chan os.Signal, 1)
		signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
		<-stopCh
		logger.Info().Msg("Shutting down gracefully...")
		return nil
	}

	program := tea.NewProgram(ui.NewDashboard(svc, store), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// newLogger builds the zerolog logger. In dashboard mode logs go to a file so
// they do not fight the terminal for the screen.
func newLogger(level string, headless bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	out := os.Stderr
	if !headless {
		f, err := os.OpenFile("termstat.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
		}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
