package controller

import (
	"net/http"

	"caja/src/sales/application/request"
	"caja/src/sales/application/usecase"
	"caja/src/shared/infrastructure/criteria"
	"caja/src/shared/infrastructure/httperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SaleController maneja cobro y listado de ventas POS
type SaleController struct {
	posSaleUC      *usecase.POSSaleUseCase
	listPosSalesUC *usecase.ListPosSalesUseCase
	criteria       *criteria.ControllerHelper
	log            logrus.FieldLogger
}

// NewSaleController crea una nueva instancia del controlador.
// listPosSalesUC es nil cuando no hay base de datos configurada.
func NewSaleController(
	posSaleUC *usecase.POSSaleUseCase,
	listPosSalesUC *usecase.ListPosSalesUseCase,
	log logrus.FieldLogger,
) *SaleController {
	return &SaleController{
		posSaleUC:      posSaleUC,
		listPosSalesUC: listPosSalesUC,
		criteria:       criteria.NewControllerHelper(),
		log:            log,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *SaleController) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/sales")
	{
		sales.POST("/quote", c.Quote)
		sales.POST("", c.POSSale)
		sales.GET("", c.ListPosSales)
		sales.GET("/search", c.SearchPosSales)
	}

	c.log.Info("Rutas Sales disponibles:")
	c.log.Info("  POST   /api/v1/sales/quote")
	c.log.Info("  POST   /api/v1/sales  ⭐ (POS Direct Sale)")
	c.log.Info("  GET    /api/v1/sales?session_id=")
	c.log.Info("  GET    /api/v1/sales/search?session_id=&payment_method=&date=&page=&page_size=")
}

// Quote calcula vuelto o faltante para el carrito actual sin cobrar
func (c *SaleController) Quote(ctx *gin.Context) {
	var req request.PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	quote, err := c.posSaleUC.Quote(&req)
	if err != nil {
		httperr.Respond(ctx, c.log, "sale.quote", err)
		return
	}
	ctx.JSON(http.StatusOK, quote)
}

// POSSale cobra el carrito y envía la venta al backend
func (c *SaleController) POSSale(ctx *gin.Context) {
	var req request.PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	resp, err := c.posSaleUC.Execute(ctx.Request.Context(), &req)
	if err != nil {
		httperr.Respond(ctx, c.log, "sale.submit", err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SearchPosSales busca en el diario con filtros y paginación
func (c *SaleController) SearchPosSales(ctx *gin.Context) {
	if c.listPosSalesUC == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "POS sales search not available (database not configured)",
			"code":  "UNAVAILABLE",
		})
		return
	}

	builder, err := c.criteria.BuildPaginationFromQuery(ctx)
	if err != nil {
		httperr.Respond(ctx, c.log, "sale.search", err)
		return
	}
	var req request.SaleSearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid query: "+err.Error())
		return
	}

	page, err := c.listPosSalesUC.Search(ctx.Request.Context(), builder, &req)
	if err != nil {
		httperr.Respond(ctx, c.log, "sale.search", err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// ListPosSales lista las ventas registradas en el diario local
func (c *SaleController) ListPosSales(ctx *gin.Context) {
	if c.listPosSalesUC == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "POS sales list not available (database not configured)",
			"code":  "UNAVAILABLE",
		})
		return
	}

	items, err := c.listPosSalesUC.Execute(ctx.Request.Context(), ctx.Query("session_id"))
	if err != nil {
		httperr.Respond(ctx, c.log, "sale.list", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_count": len(items),
	})
}
