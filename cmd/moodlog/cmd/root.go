// Package cmd contains all CLI commands for moodlog.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/config"
	"github.com/f3rmion/moodlog/internal/history"
	"github.com/f3rmion/moodlog/internal/logging"
	"github.com/f3rmion/moodlog/internal/metrics"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/f3rmion/moodlog/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var cfgDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moodlog",
	Short: "moodlog - an AI mood journal for the terminal",
	Long: `moodlog is a terminal mood journal backed by a multi-agent
sentiment-analysis server.

Write a reflection, pick an image or paste an Instagram post link, and
moodlog shows:
  - A mood score from 0 to 100 with its dominant emotion
  - Emotional themes (text sentiment, visual context, confidence)
  - Key insights from the analysis agents
  - A detailed analysis of the fusion agent's findings

Running 'moodlog' without arguments launches the interactive TUI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.config/moodlog)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log at debug level")
	rootCmd.PersistentFlags().String("backend", "", "analysis backend URL (overrides backend.base_url)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("backend.base_url", rootCmd.PersistentFlags().Lookup("backend"))
}

// initConfig resolves the config directory.
func initConfig() {
	if cfgDir != "" {
		viper.Set("config_dir", cfgDir)
		return
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
		os.Exit(1)
	}
	viper.Set("config_dir", dir)
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// app holds the dependencies shared by the commands.
type app struct {
	dir     string
	config  *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	client  *backend.Client
}

// loadApp reads the configuration and builds the logger and backend client.
func loadApp() (*app, error) {
	dir := getConfigDir()

	// An unset --backend flag never shadows the file or the environment.
	cfg, err := config.Load(viper.GetViper(), dir)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if viper.GetBool("verbose") {
		level = "debug"
	}
	log, err := logging.New(level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	rec := metrics.New()
	client, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithRateLimit(cfg.Backend.RequestsPerMinute),
		backend.WithLogger(log),
		backend.WithMetrics(rec),
	)
	if err != nil {
		return nil, err
	}

	return &app{dir: dir, config: cfg, log: log, metrics: rec, client: client}, nil
}

// openHistory opens the history store, or returns nil when history is disabled.
func (a *app) openHistory() (*history.Store, error) {
	if !a.config.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(a.config.History.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// serveMetrics exposes the recorder on the configured address until ctx
// ends. It returns immediately when metrics are disabled.
func (a *app) serveMetrics(ctx context.Context) error {
	addr := a.config.Metrics.Addr
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving metrics on %s: %w", addr, err)
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runTUI launches the interactive application.
func runTUI(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	monitor := session.NewMonitor(a.client, a.config.Health.Interval, a.log)
	monitor.Start(ctx)
	defer monitor.Stop()

	opts := tui.Options{
		Config:     a.config,
		ConfigPath: configPath(a.dir),
		Session:    session.New(a.client, a.log),
		Monitor:    monitor,
		Metrics:    a.metrics,
		Logger:     a.log,
	}

	store, err := a.openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		a.log.Error("opening history failed", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
		opts.Store = store
	}

	g, gctx := errgroup.WithContext(ctx)
	opts.Context = gctx

	if w, err := config.NewWatcher(a.dir, a.log); err != nil {
		a.log.Warn("config reload disabled", zap.Error(err))
	} else {
		opts.ConfigChanges = w.Changes()
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		// Leaving the TUI stops the watcher and the metrics server.
		defer cancel()
		a.log.Info("starting TUI", zap.String("backend", a.client.BaseURL()))
		if err := tui.Run(opts); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.serveMetrics(gctx); err != nil {
			a.log.Error("metrics server failed", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}
