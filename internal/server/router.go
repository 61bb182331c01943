package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tangle-wallet/internal/handler"
	"tangle-wallet/pkg/monitor"
	"tangle-wallet/pkg/validator"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
// reg 同时用于注册 HTTP 指标和暴露 /metrics
func NewHTTPRouter(wallet *handler.WalletHandler, reg *prometheus.Registry) *gin.Engine {
	validator.Init()
	metrics := monitor.NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(metrics.Middleware())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		addresses := api.Group("/addresses")
		addresses.GET("/used", wallet.UsedAddresses)
		addresses.GET("/new", wallet.NewAddress)
		addresses.POST("/sync", wallet.Sync)

		api.GET("/transfers", wallet.Transfers)
		api.GET("/account", wallet.Account)
		api.POST("/bundles", wallet.ResolveBundles)
	}

	return r
}
