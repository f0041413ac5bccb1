// Command pitchmodel descarga datos pitch a pitch de Baseball Savant y entrena
// un clasificador de tipo de lanzamiento por pitcher.
//
// Uso:
//
//	pitchmodel fetch
//	pitchmodel train --workers 4
//	pitchmodel inspect
//	pitchmodel evaluate 684007
//	pitchmodel history --player 684007
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/pitchmodel/config"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/storage"
	"github.com/alejandrodnm/pitchmodel/internal/ports"
)

// rootOptions son los flags persistentes compartidos por todos los subcomandos.
type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("pitchmodel exited with error", "err", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "pitchmodel",
		Short:         "Per-pitcher pitch type classifier built from Statcast data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "set log level to debug")
	root.PersistentFlags().StringVar(&opts.logFormat, "format", "", "log format: text|json (overrides config)")

	root.AddCommand(fetchCmd(opts))
	root.AddCommand(trainCmd(opts))
	root.AddCommand(inspectCmd(opts))
	root.AddCommand(evaluateCmd(opts))
	root.AddCommand(historyCmd(opts))
	return root
}

// load lee la config, aplica los flags persistentes y configura el logger.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

// openStorage abre el registro de ejecuciones. Un fallo no es fatal:
// los comandos siguen funcionando sin historial.
func openStorage(cfg *config.Config) ports.RunStorage {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Warn("failed to open storage, runs will not be recorded", "err", err, "dsn", cfg.Storage.DSN)
		return nil
	}
	return store
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
