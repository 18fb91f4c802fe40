package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ovasconcelos/viveiro/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.CycleHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/cycles", handler.StockPond)
	r.GET("/cycles/:id", handler.GetCycle)
	r.GET("/cycles/:id/metrics", handler.Metrics)
	r.POST("/cycles/:id/biometry", handler.RecordBiometry)
	r.POST("/cycles/:id/feedings", handler.RecordFeeding)
	r.POST("/cycles/:id/mortality", handler.RecordMortality)
	r.POST("/cycles/:id/inputs", handler.RecordInput)
	r.POST("/cycles/:id/harvests", handler.RecordHarvest)
	r.POST("/costs", handler.RecordOperationalCost)
	r.GET("/farm/report", handler.FarmReport)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
