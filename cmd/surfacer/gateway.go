package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storysearch/surfacer/pkg/behavior"
	"github.com/storysearch/surfacer/pkg/bus"
	"github.com/storysearch/surfacer/pkg/channels"
	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/content"
	"github.com/storysearch/surfacer/pkg/digest"
	"github.com/storysearch/surfacer/pkg/gateway"
	"github.com/storysearch/surfacer/pkg/logger"
	"github.com/storysearch/surfacer/pkg/recommend"
)

func newGatewayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Run the HTTP gateway with tracking and recommendation endpoints",
		Example: strings.TrimSpace(`
  surfacer gateway
  surfacer gateway --debug`),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyDebug(cmd)
			return runGateway(cmd)
		},
	}
	debugFlag(cmd)
	return cmd
}

func runGateway(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cmd, cfg)

	engine, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	eventBus := bus.NewEventBus()
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go engine.Run(ctx, eventBus)

	var channelManager *channels.Manager
	if strings.TrimSpace(cfg.Channels.Discord.Token) != "" {
		channelManager, err = channels.NewManager(cfg, eventBus, func() string {
			return digest.Format(engine.Refresh(ctx))
		})
		if err != nil {
			return fmt.Errorf("initialize channels: %w", err)
		}
		if err := channelManager.StartAll(ctx); err != nil {
			return fmt.Errorf("start channels: %w", err)
		}
		logger.InfoCF("gateway", "Channels started", map[string]any{
			"channels": channelManager.GetEnabledChannels(),
		})
	}

	var digestScheduler *digest.Scheduler
	if cfg.Digest.Enabled {
		digestScheduler, err = digest.NewScheduler(cfg.Digest, cfg.DigestChannelID(), engine, eventBus)
		if err != nil {
			return fmt.Errorf("initialize digest scheduler: %w", err)
		}
		if err := digestScheduler.Start(); err != nil {
			return fmt.Errorf("start digest scheduler: %w", err)
		}
	}

	server := gateway.NewServer(cfg.Gateway.Host, cfg.Gateway.Port, gateway.NewHandler(engine, eventBus))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCF("gateway", "Shutting down", map[string]any{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gateway server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WarnCF("gateway", "Server shutdown failed", map[string]any{"error": err.Error()})
	}
	if digestScheduler != nil {
		digestScheduler.Stop()
	}
	if channelManager != nil {
		if err := channelManager.StopAll(shutdownCtx); err != nil {
			logger.WarnCF("gateway", "Channel shutdown failed", map[string]any{"error": err.Error()})
		}
	}
	cancel()

	logger.InfoC("gateway", "Shutdown complete")
	return nil
}

// buildEngine wires storage, the behavior store, and the content provider
// into a recommendation engine. The returned cleanup closes the engine and
// its backing storage.
func buildEngine(cfg *config.Config) (*recommend.Engine, func(), error) {
	stateDir := filepath.Join(cfg.WorkspacePath(), "state")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state directory: %w", err)
	}

	storage, err := behavior.NewSQLiteStorage(filepath.Join(stateDir, "behavior.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open behavior storage: %w", err)
	}

	store := behavior.NewStore(storage)

	provider, err := buildProvider(cfg.Content)
	if err != nil {
		storage.Close()
		return nil, nil, err
	}

	engine := recommend.NewEngine(cfg.Engine, store, provider)
	cleanup := func() {
		engine.Close()
		if err := storage.Close(); err != nil {
			logger.WarnCF("gateway", "Storage close failed", map[string]any{"error": err.Error()})
		}
	}
	return engine, cleanup, nil
}

func buildProvider(cfg config.ContentConfig) (content.Provider, error) {
	switch cfg.Mode {
	case "", "catalog":
		return content.NewCatalogProvider(), nil
	case "http":
		if strings.TrimSpace(cfg.APIBase) == "" {
			return nil, fmt.Errorf("content.api_base is required for http mode")
		}
		provider, err := content.NewHTTPProvider(cfg.APIBase, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("initialize content provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown content mode: %s", cfg.Mode)
	}
}
