package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	semnet "github.com/vilterp/semnet/pkg"
	clog "github.com/vilterp/semnet/pkg/log"
	"github.com/vilterp/semnet/pkg/scenario"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configFile     string
	host           string
	port           int
	scenarioDir    string
	maxCompletions int
	logLevel       string
	logConsole     bool
	pprof          bool
)

var rootCmd = &cobra.Command{
	Use:   "semnet-server",
	Short: "Serve forcing queries over scenario networks",
	Long: `Loads every scenario file in a directory and answers evaluate, check,
forces and related requests over a websocket at /ws. Prometheus metrics are
served at /metrics.

Flags given on the command line override the config file.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.StringVar(&host, "host", "0.0.0.0", "host to listen on")
	flags.IntVarP(&port, "port", "p", 9000, "port to listen on")
	flags.StringVarP(&scenarioDir, "scenarios", "s", "scenarios", "directory of scenario files")
	flags.IntVar(&maxCompletions, "max-completions", 0, "completion limit for forcing (0 for the default)")
	flags.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flags.BoolVar(&logConsole, "log-console", false, "human-readable logs instead of JSON")
	flags.BoolVar(&pprof, "pprof", false, "serve /debug/pprof")
}

func loadConfig(cmd *cobra.Command) (*semnet.Config, error) {
	cfg := semnet.DefaultConfig()
	if configFile != "" {
		loaded, err := semnet.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("scenarios") {
		cfg.ScenarioDir = scenarioDir
	}
	if flags.Changed("max-completions") {
		cfg.MaxCompletions = maxCompletions
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-console") {
		cfg.LogConsole = logConsole
	}
	if flags.Changed("pprof") {
		cfg.Pprof = pprof
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := clog.Init(cfg.LogLevel, cfg.LogConsole); err != nil {
		return err
	}
	defer clog.Sync()
	logger := clog.L()

	catalog, err := scenario.LoadDir(cfg.ScenarioDir)
	if err != nil {
		return fmt.Errorf("loading scenarios: %w", err)
	}
	logger.Info("loaded scenarios",
		zap.String("dir", cfg.ScenarioDir),
		zap.Strings("names", catalog.Names()))

	server := semnet.NewServer(catalog, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// graceful shutdown on Ctrl-C
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
