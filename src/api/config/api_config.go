package config

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIConfig configuración del módulo API (health check)
type APIConfig struct {
	DB         *sql.DB
	Version    string
	TerminalID string
	// RegisterState devuelve el estado local de la caja; puede ser nil
	RegisterState func() string
}

// DefaultAPIConfig devuelve una configuración por defecto
func DefaultAPIConfig() APIConfig {
	return APIConfig{Version: "dev"}
}

// SetupAPIModule registra /health en la raíz y en el grupo versionado
func SetupAPIModule(router *gin.Engine, v1 *gin.RouterGroup, cfg APIConfig) {
	handler := healthHandler(cfg)
	router.GET("/health", handler)
	v1.GET("/health", handler)
}

func healthHandler(cfg APIConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp := gin.H{
			"status":   "ok",
			"service":  "caja",
			"version":  cfg.Version,
			"terminal": cfg.TerminalID,
			"database": "disabled",
		}
		if cfg.RegisterState != nil {
			resp["register"] = cfg.RegisterState()
		}

		if cfg.DB != nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.DB.PingContext(pingCtx); err != nil {
				// La caja sigue operando sin base de datos
				resp["status"] = "degraded"
				resp["database"] = "down"
			} else {
				resp["database"] = "up"
			}
		}
		ctx.JSON(http.StatusOK, resp)
	}
}
