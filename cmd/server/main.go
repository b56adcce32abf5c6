package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chanboard/internal/cache"
	"chanboard/internal/config"
	"chanboard/internal/db"
	"chanboard/internal/repository"
	"chanboard/internal/router"
	"chanboard/internal/services"
	"chanboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.Server.Mode)

	// 初始化数据库
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := db.Seed(gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Fatal("Failed to seed database")
	}

	threadCache, err := cache.New(cfg.Cache)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize thread cache")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化异步分数对账服务
	repo := repository.New(gdb)
	reconciler := services.NewScoreReconciler(repo, cfg.ReconcileInterval)
	threads := services.NewThreadService(repo, threadCache, reconciler)
	reconciler.Start(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: router.New(router.Deps{
			Repo:           repo,
			Threads:        threads,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("chanboard server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	// 等待退出信号，优雅关闭
	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	reconciler.Wait()
}
