// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Corphon/SceneVideoMaker/internal/api"
	"github.com/Corphon/SceneVideoMaker/internal/config"
	"github.com/Corphon/SceneVideoMaker/internal/generation"
	"github.com/Corphon/SceneVideoMaker/internal/services"
	"github.com/Corphon/SceneVideoMaker/internal/storage"
	"github.com/Corphon/SceneVideoMaker/internal/utils"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("🚀 启动 SceneVideoMaker 服务器...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 配置加载完成，端口: %s", cfg.Port)

	// 2. 初始化日志
	logger := utils.GetLogger()
	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "server.log")); err != nil {
		log.Printf("⚠️ 日志文件不可用，仅输出到控制台: %v", err)
	}
	defer logger.Close()

	level, err := utils.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("⚠️ %v，使用 INFO", err)
		level = utils.INFO
	}
	if cfg.DebugMode {
		level = utils.DEBUG
	}
	logger.SetLogLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Println("✅ 服务器优雅关闭完成")
}

func run(cfg *config.Config, logger *utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化服务
	seeds, err := storage.NewSeedSource(cfg.SeedFile)
	if err != nil {
		return err
	}

	metrics := utils.GetMetricsCollector()
	sessions := services.NewSessionService(ctx, seeds, cfg.SessionTTL, cfg.MaxSessions, logger, metrics)
	defer sessions.Close()

	client := generation.NewClient(cfg.BackendURL, cfg.PublicOrigin, cfg.GenerateTimeout)
	gen := services.NewGenerationService(client, logger, metrics)

	// 4. 设置路由
	router, err := api.SetupRouter(api.Dependencies{
		Config:     cfg,
		Sessions:   sessions,
		Generation: gen,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	backend := cfg.BackendURL
	switch {
	case !cfg.GenerationConfigured():
		backend = "(not configured)"
		logger.Warn("video generation disabled: set BACKEND_URL, or PUBLIC_ORIGIN behind a proxy that routes /api/generate", nil)
	case backend == "":
		// 前置代理需要把 /api/generate 转发给渲染服务
		backend = cfg.PublicOrigin + " (same origin)"
	}
	logger.Info("server starting", map[string]interface{}{
		"addr":    srv.Addr,
		"backend": backend,
		"url":     "http://localhost:" + cfg.Port,
	})

	g, gctx := errgroup.WithContext(ctx)

	// 5. 启动服务器
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sessions.RunSweeper(gctx, sweepInterval(cfg.SessionTTL))
	})

	// SIGHUP 重新加载初始项目文件
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := seeds.Reload(); err != nil {
					logger.Warn("seed reload failed", map[string]interface{}{"error": err.Error()})
				} else {
					logger.Info("seed file reloaded", map[string]interface{}{"file": cfg.SeedFile})
				}
			}
		}
	})

	// 6. 等待退出信号后优雅关闭
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweepInterval 清理周期取 TTL 的一半，最长一分钟
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
