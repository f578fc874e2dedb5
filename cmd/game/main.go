package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/config"
	"github.com/tatianab/narrative-engine/internal/engine"
	"github.com/tatianab/narrative-engine/internal/logging"
	"github.com/tatianab/narrative-engine/internal/models"
	"github.com/tatianab/narrative-engine/internal/storage"
	"github.com/tatianab/narrative-engine/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Game exited with error", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := chat.New(ctx, cfg.Chat())
	if err != nil {
		return fmt.Errorf("create chat client: %w", err)
	}
	if c, ok := client.(io.Closer); ok {
		defer c.Close()
	}

	store, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("open save store: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		startMetricsServer(cfg.MetricsAddr, reg, logger)
	}

	preset, err := presetWorld(cfg)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(client, logger, metrics)
	game := engine.NewGame(eng, store, engine.WithSaveKey(cfg.SaveKey))

	logger.Info("Starting game",
		zap.String("provider", cfg.ChatProvider),
		zap.String("store", cfg.StoreBackend),
		zap.Bool("preset_world", preset != nil))

	return tui.Run(game, tui.Options{
		Preset:    preset,
		ShareBase: cfg.ShareBase,
		Logger:    logger,
	})
}

// presetWorld returns the world named by WORLD_FILE or SHARE_TOKEN, if any.
// SHARE_TOKEN may be a bare token or a full share link.
func presetWorld(cfg *config.Config) (*models.WorldConfig, error) {
	if cfg.WorldFile != "" {
		return models.LoadWorldFile(cfg.WorldFile)
	}
	if cfg.ShareToken == "" {
		return nil, nil
	}
	var world *models.WorldConfig
	if strings.Contains(cfg.ShareToken, "://") {
		world = models.SharedConfigFromURL(cfg.ShareToken)
	} else {
		world = models.DecodeShareToken(cfg.ShareToken)
	}
	if world == nil {
		return nil, errors.New("SHARE_TOKEN does not hold a usable world")
	}
	return world, nil
}

// startMetricsServer serves /metrics and /health in the background.
func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
}
