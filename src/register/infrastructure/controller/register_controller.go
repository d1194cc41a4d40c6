package controller

import (
	"errors"
	"net/http"

	"caja/src/register/application/request"
	"caja/src/register/application/response"
	"caja/src/register/application/usecase"
	"caja/src/register/domain/entity"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/infrastructure/httperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegisterController maneja las peticiones HTTP de la caja
type RegisterController struct {
	register *usecase.RegisterSessionController
	log      logrus.FieldLogger
}

// NewRegisterController crea una nueva instancia del controlador
func NewRegisterController(register *usecase.RegisterSessionController, log logrus.FieldLogger) *RegisterController {
	return &RegisterController{
		register: register,
		log:      log,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *RegisterController) RegisterRoutes(router *gin.RouterGroup) {
	caja := router.Group("/caja")
	{
		caja.GET("", c.Status)
		caja.POST("/open", c.Open)
		caja.POST("/close", c.Close)
		caja.POST("/refresh", c.Refresh)
		caja.GET("/movements", c.ListMovements)
		caja.POST("/movements", c.AddMovement)
		caja.GET("/reconciliation", c.Reconciliation)
		caja.GET("/summary", c.Summary)
		caja.GET("/history", c.History)
		caja.GET("/last-closed", c.LastClosed)
	}

	c.log.Info("Rutas Caja disponibles:")
	c.log.Info("  GET    /api/v1/caja")
	c.log.Info("  POST   /api/v1/caja/open")
	c.log.Info("  POST   /api/v1/caja/close")
	c.log.Info("  POST   /api/v1/caja/refresh")
	c.log.Info("  GET    /api/v1/caja/movements")
	c.log.Info("  POST   /api/v1/caja/movements")
	c.log.Info("  GET    /api/v1/caja/reconciliation")
	c.log.Info("  GET    /api/v1/caja/summary")
	c.log.Info("  GET    /api/v1/caja/history")
	c.log.Info("  GET    /api/v1/caja/last-closed")
}

// Status devuelve el estado local de la caja sin llamar al backend
func (c *RegisterController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.status())
}

func (c *RegisterController) status() response.RegisterStatusResponse {
	resp := response.RegisterStatusResponse{
		State:              c.register.State(),
		Session:            c.register.Session(),
		Movements:          c.register.Movements(),
		Summary:            c.register.LastSummary(),
		HighValueThreshold: c.register.Threshold(),
		Closing:            c.register.Closing(),
	}
	if rec, err := c.register.Reconciliation(); err == nil {
		resp.Reconciliation = rec
	}
	return resp
}

// Open abre la caja
func (c *RegisterController) Open(ctx *gin.Context) {
	var req request.OpenRegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}
	if req.OpeningCash == nil {
		httperr.BadRequest(ctx, "opening_cash is required")
		return
	}

	_, err := c.register.Open(ctx.Request.Context(), *req.OpeningCash)
	if err != nil {
		httperr.Respond(ctx, c.log, "open", err)
		return
	}
	ctx.JSON(http.StatusCreated, c.status())
}

// Close cierra la caja con el efectivo declarado
func (c *RegisterController) Close(ctx *gin.Context) {
	var req request.CloseRegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}
	if req.DeclaredCash == nil {
		httperr.BadRequest(ctx, "declared_cash is required")
		return
	}

	_, err := c.register.Close(ctx.Request.Context(), *req.DeclaredCash)
	if err != nil {
		httperr.Respond(ctx, c.log, "close", err)
		return
	}
	ctx.JSON(http.StatusOK, c.status())
}

// Refresh vuelve a leer la sesión actual del backend
func (c *RegisterController) Refresh(ctx *gin.Context) {
	_, err := c.register.Refresh(ctx.Request.Context())
	if err != nil {
		httperr.Respond(ctx, c.log, "refresh", err)
		return
	}
	ctx.JSON(http.StatusOK, c.status())
}

// AddMovement registra un ingreso o egreso
func (c *RegisterController) AddMovement(ctx *gin.Context) {
	var req request.CashMovementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}
	if req.Amount == nil {
		httperr.BadRequest(ctx, "amount is required")
		return
	}
	kind, err := entity.ParseMovementKind(req.Kind)
	if err != nil {
		httperr.Respond(ctx, c.log, "add_movement", err)
		return
	}

	movement, err := c.register.AddMovement(ctx.Request.Context(), kind, *req.Amount, req.Description, req.Confirmed)
	if err != nil {
		if errors.Is(err, entity.ErrHighValueConfirmation) {
			// El cliente debe reenviar con confirmed=true
			ctx.JSON(http.StatusPreconditionRequired, response.ConfirmationRequiredResponse{
				Error:     err.Error(),
				Code:      string(apperror.CodeConfirmationRequired),
				Amount:    *req.Amount,
				Threshold: c.register.Threshold(),
			})
			return
		}
		httperr.Respond(ctx, c.log, "add_movement", err)
		return
	}
	ctx.JSON(http.StatusCreated, movement)
}

// ListMovements lista el libro de movimientos local
func (c *RegisterController) ListMovements(ctx *gin.Context) {
	items := c.register.Movements()
	ctx.JSON(http.StatusOK, response.MovementListResponse{
		SessionID:  c.register.CurrentSessionID(),
		Items:      items,
		TotalCount: len(items),
	})
}

// Reconciliation devuelve el arqueo actual
func (c *RegisterController) Reconciliation(ctx *gin.Context) {
	rec, err := c.register.Reconciliation()
	if err != nil {
		httperr.Respond(ctx, c.log, "reconciliation", err)
		return
	}
	ctx.JSON(http.StatusOK, rec)
}

// Summary refresca y devuelve el resumen calculado por el backend
func (c *RegisterController) Summary(ctx *gin.Context) {
	summary, err := c.register.RefreshSummary(ctx.Request.Context())
	if err != nil {
		httperr.Respond(ctx, c.log, "summary", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// History lista las sesiones recientes
func (c *RegisterController) History(ctx *gin.Context) {
	sessions, err := c.register.History(ctx.Request.Context())
	if err != nil {
		httperr.Respond(ctx, c.log, "history", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"items":       sessions,
		"total_count": len(sessions),
	})
}

// LastClosed devuelve el snapshot del último cierre; 404 si todavía no hubo
func (c *RegisterController) LastClosed(ctx *gin.Context) {
	snapshot, err := c.register.LastClosed(ctx.Request.Context())
	if err != nil {
		httperr.Respond(ctx, c.log, "last_closed", err)
		return
	}
	if snapshot == nil {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error": "no closed register yet",
			"code":  apperror.CodeNotFound,
		})
		return
	}
	ctx.JSON(http.StatusOK, snapshot)
}
