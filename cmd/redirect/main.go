package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/InQaaaaGit/go_redirect.git/internal/app"
	"github.com/InQaaaaGit/go_redirect.git/internal/buildinfo"
	"github.com/InQaaaaGit/go_redirect.git/internal/config"
	"github.com/InQaaaaGit/go_redirect.git/internal/server"
	"go.uber.org/zap"
)

// Заполняются через -ldflags "-X main.buildVersion=..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Инициализация конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка инициализации конфигурации: %v", err)
	}

	// Инициализация логгера
	logger, sync := server.InitLogger(cfg.LogLevel)
	defer sync()

	logger.Info("Build info", buildinfo.NewInfo(buildVersion, buildDate, buildCommit).Fields()...)

	// Настройки перехода читаются из окружения на каждый запрос
	application := app.NewApp(cfg, logger, nil)
	srv := server.NewHTTPServer(application.GetServer(), cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
}
