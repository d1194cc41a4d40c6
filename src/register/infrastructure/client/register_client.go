package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"caja/src/register/domain/entity"
	"caja/src/register/domain/port"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/infrastructure/backend"

	"github.com/shopspring/decimal"
)

// sessionPayload representa una sesión de caja tal como la devuelve el backend
type sessionPayload struct {
	ID                  string           `json:"id"`
	OpenedAt            time.Time        `json:"opened_at"`
	ClosedAt            *time.Time       `json:"closed_at"`
	OpeningCash         decimal.Decimal  `json:"opening_cash"`
	ClosingCashDeclared *decimal.Decimal `json:"closing_cash_declared"`
	ExpectedCash        decimal.Decimal  `json:"expected_cash"`
	CashVariance        *decimal.Decimal `json:"cash_variance"`
	ResponsibleUser     string           `json:"responsible_user"`
	IsOpen              *bool            `json:"is_open"`
}

func (p sessionPayload) toEntity() *entity.RegisterSession {
	s := &entity.RegisterSession{
		ID:                  p.ID,
		OpenedAt:            p.OpenedAt,
		ClosedAt:            p.ClosedAt,
		OpeningCash:         p.OpeningCash,
		ClosingCashDeclared: p.ClosingCashDeclared,
		ExpectedCash:        p.ExpectedCash,
		CashVariance:        p.CashVariance,
		ResponsibleUser:     p.ResponsibleUser,
	}
	// Si el backend no informa is_open se deriva de closed_at
	if p.IsOpen != nil {
		s.IsOpen = *p.IsOpen
	} else {
		s.IsOpen = p.ClosedAt == nil
	}
	return s
}

// movementPayload representa un movimiento de caja en el backend
type movementPayload struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ActingUser  string          `json:"acting_user"`
}

func (p movementPayload) toEntity(sessionID string) entity.CashMovement {
	kind, err := entity.ParseMovementKind(p.Kind)
	if err != nil {
		kind = entity.MovementKind(p.Kind)
	}
	if p.SessionID != "" {
		sessionID = p.SessionID
	}
	return entity.CashMovement{
		ID:          p.ID,
		SessionID:   sessionID,
		Timestamp:   p.Timestamp,
		Kind:        kind,
		Amount:      p.Amount,
		Description: p.Description,
		ActingUser:  p.ActingUser,
	}
}

// openRequest request para abrir caja
type openRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
	User        string          `json:"user"`
}

// closeRequest request para cerrar caja
type closeRequest struct {
	DeclaredCash decimal.Decimal `json:"declared_cash"`
}

// RegisterClient cliente HTTP de caja contra el backend de back-office
type RegisterClient struct {
	backend  *backend.Client
	basePath string
}

// NewRegisterClient crea una nueva instancia del cliente
func NewRegisterClient(b *backend.Client) port.RegisterBackend {
	return &RegisterClient{
		backend:  b,
		basePath: "/api/v1/caja",
	}
}

// CurrentSession obtiene la caja abierta; 404 o cuerpo vacío significan que no hay
func (c *RegisterClient) CurrentSession(ctx context.Context) (*entity.RegisterSession, error) {
	var payload *sessionPayload
	err := c.backend.Do(ctx, http.MethodGet, c.basePath+"/current", nil, &payload, nil)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if payload == nil || payload.ID == "" {
		return nil, nil
	}
	return payload.toEntity(), nil
}

// OpenSession abre una caja usando POST /caja/open
func (c *RegisterClient) OpenSession(ctx context.Context, openingCash decimal.Decimal, user string) (*entity.RegisterSession, error) {
	var payload sessionPayload
	req := openRequest{OpeningCash: openingCash, User: user}
	if err := c.backend.Do(ctx, http.MethodPost, c.basePath+"/open", req, &payload, nil); err != nil {
		return nil, err
	}
	s := payload.toEntity()
	s.IsOpen = true
	return s, nil
}

// CloseSession cierra la caja usando POST /caja/:id/close
func (c *RegisterClient) CloseSession(ctx context.Context, sessionID string, declaredCash decimal.Decimal) (*entity.RegisterSession, error) {
	var payload sessionPayload
	path := fmt.Sprintf("%s/%s/close", c.basePath, url.PathEscape(sessionID))
	if err := c.backend.Do(ctx, http.MethodPost, path, closeRequest{DeclaredCash: declaredCash}, &payload, nil); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		payload.ID = sessionID
	}
	s := payload.toEntity()
	s.IsOpen = false
	return s, nil
}

// History lista las sesiones recientes usando GET /caja/history
func (c *RegisterClient) History(ctx context.Context) ([]entity.RegisterSession, error) {
	var payload []sessionPayload
	if err := c.backend.Do(ctx, http.MethodGet, c.basePath+"/history", nil, &payload, nil); err != nil {
		return nil, err
	}
	sessions := make([]entity.RegisterSession, 0, len(payload))
	for _, p := range payload {
		sessions = append(sessions, *p.toEntity())
	}
	return sessions, nil
}

// AddMovement registra un movimiento usando POST /caja/:id/movements
func (c *RegisterClient) AddMovement(ctx context.Context, movement *entity.CashMovement) (*entity.CashMovement, error) {
	req := movementPayload{
		Timestamp:   movement.Timestamp,
		Kind:        string(movement.Kind),
		Amount:      movement.Amount,
		Description: movement.Description,
		ActingUser:  movement.ActingUser,
	}
	var payload movementPayload
	path := fmt.Sprintf("%s/%s/movements", c.basePath, url.PathEscape(movement.SessionID))
	if err := c.backend.Do(ctx, http.MethodPost, path, req, &payload, nil); err != nil {
		return nil, err
	}
	m := payload.toEntity(movement.SessionID)
	return &m, nil
}

// ListMovements lista los movimientos de una sesión
func (c *RegisterClient) ListMovements(ctx context.Context, sessionID string) ([]entity.CashMovement, error) {
	var payload []movementPayload
	path := fmt.Sprintf("%s/%s/movements", c.basePath, url.PathEscape(sessionID))
	if err := c.backend.Do(ctx, http.MethodGet, path, nil, &payload, nil); err != nil {
		return nil, err
	}
	movements := make([]entity.CashMovement, 0, len(payload))
	for _, p := range payload {
		movements = append(movements, p.toEntity(sessionID))
	}
	return movements, nil
}

// Summary obtiene el resumen de caja calculado por el backend
func (c *RegisterClient) Summary(ctx context.Context, sessionID string) (*entity.CashSummary, error) {
	var summary entity.CashSummary
	path := fmt.Sprintf("%s/%s/summary", c.basePath, url.PathEscape(sessionID))
	if err := c.backend.Do(ctx, http.MethodGet, path, nil, &summary, nil); err != nil {
		return nil, err
	}
	if summary.SessionID == "" {
		summary.SessionID = sessionID
	}
	return &summary, nil
}
