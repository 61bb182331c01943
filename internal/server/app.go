package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tangle-wallet/pkg/logger"
)

type Config struct {
	HttpPort string
	// ShutdownTimeout 优雅退出等待时间, 默认 5s
	ShutdownTimeout time.Duration
}

type App struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	cleanups        []func()
}

func New(cfg Config, httpHandler *gin.Engine) *App {
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &App{
		httpServer: &http.Server{
			Addr:              ":" + cfg.HttpPort,
			Handler:           httpHandler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// OnShutdown 注册退出时执行的清理函数, 按注册的逆序执行
func (a *App) OnShutdown(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

// Run 启动服务并阻塞，直到收到关闭信号
func (a *App) Run() {
	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Server failure", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	a.Shutdown()
}

// Shutdown 优雅关闭 HTTP 服务并执行清理函数
func (a *App) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	logger.Info("Server exited properly")
}
