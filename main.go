package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studyplan/config"
	shttp "studyplan/http"
	"studyplan/logging"
	"studyplan/monitoring"
	"studyplan/predictor"
)

var flags = struct {
	config string
	port   int
	model  string
	lazy   bool
}{}

var root = &cobra.Command{
	Use:   "studyplan",
	Short: "Serve study time predictions over HTTP",
	Args:  cobra.NoArgs,
	RunE:  run,

	SilenceUsage: true,
}

func init() {
	root.Flags().StringVarP(&flags.config, "config", "c", "", "config file (default $"+config.EnvPath+" or config.yaml)")
	root.Flags().IntVarP(&flags.port, "port", "p", 0, "listen port (overwrites http.port)")
	root.Flags().StringVarP(&flags.model, "model-path", "m", "", "model artifact (overwrites ml.model_path)")
	root.Flags().BoolVar(&flags.lazy, "lazy-load", false, "load the model on the first request (overwrites ml.lazy_load)")
}

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// 1. Load config
	path := config.ResolvePath(flags.config)
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.port != 0 {
		cfg.HTTP.Port = flags.port
	}
	if flags.model != "" {
		cfg.ML.ModelPath = flags.model
	}
	if cmd.Flags().Changed("lazy-load") {
		cfg.ML.LazyLoad = flags.lazy
	}

	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if found {
		logger.Info("config loaded", zap.String("path", path))
	} else {
		logger.Info("config file not found, using defaults", zap.String("path", path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Follow log level edits without a restart
	if found {
		go func() {
			err := config.Watch(ctx, path, logger, func(next *config.Config) {
				if err := logging.SetLevel(level, next.Log.Level); err != nil {
					logger.Warn("ignoring log level", zap.Error(err))
				}
			})
			if err != nil {
				logger.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	// 3. Model and prediction service
	metrics := monitoring.NewMetrics()
	var models predictor.ModelHandle
	if cfg.ML.LazyLoad {
		models = predictor.NewLazyModel(cfg.ML.ModelType, cfg.ML.ModelPath, logger, metrics)
		logger.Info("model will load on first request", zap.String("path", cfg.ML.ModelPath))
	} else {
		static, err := predictor.LoadStaticModel(cfg.ML.ModelType, cfg.ML.ModelPath, metrics)
		if err != nil {
			logger.Error("model load failed, run train_model first", zap.Error(err))
			return err
		}
		models = static
		logger.Info("model loaded", zap.String("path", cfg.ML.ModelPath), zap.String("type", cfg.ML.ModelType))
	}

	service, err := predictor.NewService(models, predictor.Options{
		AveragePerTopic: cfg.ML.AveragePerTopic,
		CacheSize:       cfg.ML.CacheSize,
	}, logger, metrics)
	if err != nil {
		return err
	}

	// 4. Start HTTP server
	server := shttp.NewServer(shttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        cfg.HTTP.Timeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, service, metrics, logger)

	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()

	// 5. Handle graceful shutdown
	select {
	case err := <-errc:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("exiting")
	return nil
}
