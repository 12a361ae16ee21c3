package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/veilmarket/market-indexer/pkg/indexer"
)

var (
	configFile = flag.String("config", "config.example.yaml", "path to config file")
)

func main() {
	flag.Parse()

	loggingConfig := zap.NewDevelopmentConfig()
	loggingConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	zapLogger, err := loggingConfig.Build()
	if err != nil {
		log.Fatalf("could not initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	logger := zapLogger.Sugar()

	data, err := os.ReadFile(*configFile)
	if err != nil {
		logger.Fatalf("could not read config file: %v", err)
	}

	config := &indexer.Config{}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		logger.Fatalf("could not load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := indexer.New(ctx, config, zapLogger)
	if err != nil {
		logger.Fatalf("could not instantiate indexer: %v", err)
	}

	if err := service.Start(ctx); err != nil {
		logger.Fatalf("could not start indexer: %v", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("termination signal received, shutting down")
		service.Stop()
	case err := <-service.Err():
		logger.Errorf("fatal indexer error: %v", err)
		service.Stop()
		os.Exit(1)
	}
}
