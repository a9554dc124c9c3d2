package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlekseyZapadovnikov/issue-tracker/conf"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/metrics"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/repository"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/service"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/web"
)

// main конфигурирует сервис, поднимает хранилище, сервисы и HTTP-сервер, а затем управляет их жизненным циклом.
func main() {
	// Берём путь до конфигурации из окружения либо используем значение по умолчанию.
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./conf/config.json"
	}

	config := conf.MustLoad(cfgPath)
	slog.Info("Configuration loaded successfully", "config_path", cfgPath)
	slog.Info("Database configuration", "host", config.DBConf.Host, "port", config.DBConf.Port, "user", config.DBConf.User, "database", config.DBConf.Name)

	ctx := context.Background()
	storage, err := repository.NewStorage(ctx, &config.DBConf)
	if err != nil {
		slog.Error("Database initialization failed", "error", err)
		os.Exit(1)
	}
	defer storage.Close()
	slog.Info("Database storage initialized successfully")

	m := metrics.New()
	issueManager := service.NewIssueManager(storage)
	catalogManager := service.NewCatalogManager(storage)
	detailManager := service.NewDetailManager(storage,
		service.WithJoinTimeout(config.DetailConf.GetJoinTimeout()),
		service.WithCycleObserver(m),
	)
	slog.Info("Managers created successfully", "join_timeout", config.DetailConf.GetJoinTimeout())

	// Прогреваем кэш пользователей; ошибка не мешает старту.
	if _, err := catalogManager.ListUsers(ctx); err != nil {
		slog.Warn("User cache warm-up failed", "error", err)
	}

	server := web.New(config.HTTPServConf, issueManager, catalogManager, detailManager, m)
	slog.Info("HTTP server created successfully", "address", server.Address)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Issue tracker started successfully", "address", server.Address)

	// Ожидаем сигнал остановки для плавного завершения работы.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
