package controller

import (
	"net/http"

	"caja/src/sales/application/usecase"
	"caja/src/shared/infrastructure/httperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportController maneja las peticiones HTTP para reportes
type ReportController struct {
	dailyReportUC *usecase.DailyReportUseCase
	log           logrus.FieldLogger
}

// NewReportController crea una nueva instancia del controlador
func NewReportController(dailyReportUC *usecase.DailyReportUseCase, log logrus.FieldLogger) *ReportController {
	return &ReportController{
		dailyReportUC: dailyReportUC,
		log:           log,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *ReportController) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("/daily", c.DailyReport)
	}

	c.log.Info("Rutas Report disponibles:")
	c.log.Info("  GET    /api/v1/reports/daily?date=YYYY-MM-DD")
}

// DailyReport maneja el reporte diario de ventas
func (c *ReportController) DailyReport(ctx *gin.Context) {
	if c.dailyReportUC == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Daily report not available (database not configured)",
			"code":  "UNAVAILABLE",
		})
		return
	}

	// ========================================================================
	// PASO 1: Leer query parameter 'date' (OBLIGATORIO)
	// ========================================================================
	date := ctx.Query("date")
	if date == "" {
		httperr.BadRequest(ctx, "date query parameter is required (format: YYYY-MM-DD)")
		return
	}

	// ========================================================================
	// PASO 2: Ejecutar use case
	// ========================================================================
	resp, err := c.dailyReportUC.Execute(ctx.Request.Context(), date)
	if err != nil {
		httperr.Respond(ctx, c.log, "report.daily", err)
		return
	}

	// ========================================================================
	// PASO 3: Responder exitosamente
	// ========================================================================
	ctx.JSON(http.StatusOK, resp)
}
