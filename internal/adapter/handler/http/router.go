package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microshop/orders-service/internal/adapter/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router serves the ops endpoints. The service API itself lives on the bus.
type Router struct {
	*gin.Engine
}

func NewRouter(conf *config.App) (*Router, error) {
	if conf.Mode == config.AppModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Router{router}, nil
}

// Serve starts the ops HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
