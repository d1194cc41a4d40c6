package controller

import (
	"net/http"

	"caja/src/sales/application/request"
	"caja/src/sales/application/response"
	"caja/src/sales/application/usecase"
	"caja/src/sales/domain/entity"
	"caja/src/shared/infrastructure/httperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CartController maneja las peticiones HTTP del carrito de la terminal
type CartController struct {
	cartUC *usecase.CartUseCase
	log    logrus.FieldLogger
}

// NewCartController crea una nueva instancia del controlador
func NewCartController(cartUC *usecase.CartUseCase, log logrus.FieldLogger) *CartController {
	return &CartController{
		cartUC: cartUC,
		log:    log,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *CartController) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/cart")
	{
		cart.GET("", c.View)
		cart.DELETE("", c.Clear)
		cart.POST("/lines", c.AddLine)
		cart.POST("/lines/:product_id/adjust", c.AdjustLine)
		cart.DELETE("/lines/:product_id", c.RemoveLine)
	}

	c.log.Info("Rutas Cart disponibles:")
	c.log.Info("  GET    /api/v1/cart")
	c.log.Info("  DELETE /api/v1/cart")
	c.log.Info("  POST   /api/v1/cart/lines")
	c.log.Info("  POST   /api/v1/cart/lines/:product_id/adjust")
	c.log.Info("  DELETE /api/v1/cart/lines/:product_id")
}

// View devuelve el carrito con sus subtotales
func (c *CartController) View(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.cartUC.View())
}

// AddLine agrega un producto o reemplaza sus cantidades si ya está en el carrito
func (c *CartController) AddLine(ctx *gin.Context) {
	var req request.AddCartLineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	line, err := c.cartUC.AddProduct(ctx.Request.Context(), req.ProductID, req.BlisterQty, req.UnitQty)
	if err != nil {
		httperr.Respond(ctx, c.log, "cart.add", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.CartLineChangeResponse{
		Line: &response.CartLineResponse{CartLine: *line, Subtotal: line.Subtotal()},
		Cart: c.cartUC.View(),
	})
}

// AdjustLine suma o resta 1 en el eje indicado; en cero la línea se elimina
func (c *CartController) AdjustLine(ctx *gin.Context) {
	var req request.AdjustCartLineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}
	axis, err := entity.ParseQuantityAxis(req.Axis)
	if err != nil {
		httperr.Respond(ctx, c.log, "cart.adjust", err)
		return
	}

	line, err := c.cartUC.Adjust(ctx.Param("product_id"), axis, req.Delta)
	if err != nil {
		httperr.Respond(ctx, c.log, "cart.adjust", err)
		return
	}

	resp := response.CartLineChangeResponse{Removed: line == nil, Cart: c.cartUC.View()}
	if line != nil {
		resp.Line = &response.CartLineResponse{CartLine: *line, Subtotal: line.Subtotal()}
	}
	ctx.JSON(http.StatusOK, resp)
}

// RemoveLine quita un producto del carrito
func (c *CartController) RemoveLine(ctx *gin.Context) {
	if err := c.cartUC.Remove(ctx.Param("product_id")); err != nil {
		httperr.Respond(ctx, c.log, "cart.remove", err)
		return
	}
	ctx.JSON(http.StatusOK, c.cartUC.View())
}

// Clear vacía el carrito
func (c *CartController) Clear(ctx *gin.Context) {
	if err := c.cartUC.Clear(); err != nil {
		httperr.Respond(ctx, c.log, "cart.clear", err)
		return
	}
	ctx.JSON(http.StatusOK, c.cartUC.View())
}
