package config

import (
	"caja/src/shared/infrastructure/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SharedMiddlewareConfig contiene la configuración de los middlewares compartidos
type SharedMiddlewareConfig struct {
	EnableRequestLog bool
	LogExcludedPaths []string
}

// DefaultSharedConfig devuelve una configuración por defecto
func DefaultSharedConfig() SharedMiddlewareConfig {
	return SharedMiddlewareConfig{
		EnableRequestLog: true,
		LogExcludedPaths: []string{"/health", "/metrics"},
	}
}

// SetupSharedMiddleware configura los middlewares compartidos.
// El orden importa: recovery primero, luego el contexto de la petición y al final el log.
func SetupSharedMiddleware(router *gin.Engine, cfg SharedMiddlewareConfig, log logrus.FieldLogger) {
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestContext())

	if cfg.EnableRequestLog {
		router.Use(middleware.RequestLogger(log, cfg.LogExcludedPaths))
	}
}
