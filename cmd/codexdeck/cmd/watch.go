package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codexdeck/codexdeck/internal/config"
)

var watchInterval time.Duration

// watchCmd keeps the local registry in sync with the backend until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the backend and keep the registry in sync",
	Long: `Connect to the backend and keep the local workspace registry in sync,
reloading group configuration whenever config.yaml changes. Runs until
interrupted with Ctrl+C.

Example:
  codexdeck watch
  codexdeck watch --interval 10s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "refresh interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logLevel := slog.LevelInfo
	zerologLevel := zerolog.InfoLevel
	if verbose {
		logLevel = slog.LevelDebug
		zerologLevel = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(zerologLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
	}))

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	logger.Info("Connected to backend",
		"url", s.cfg.Backend.URL,
		"workspaces", s.manager.Registry().Len())

	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	watcher, err := config.NewWatcher(configPath, func(cfg *config.Config) {
		groups, assignments := cfg.WorkspaceGroups()
		s.manager.SetGroups(groups, assignments)
		s.manager.SetDefaultCodexBin(cfg.Codex.DefaultBin)
		logger.Info("Reloaded configuration", "groups", len(groups))
	})
	if err != nil {
		logger.Warn("Config watching unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			ctx, cancel := callContext(s.cfg)
			err := s.manager.Refresh(ctx)
			cancel()
			if err != nil {
				logger.Warn("Refresh failed", "error", err)
				continue
			}
			logger.Debug("Registry refreshed", "workspaces", s.manager.Registry().Len())
		case sig := <-sigCh:
			fmt.Printf("\nReceived %v, shutting down...\n", sig)
			return nil
		}
	}
}
