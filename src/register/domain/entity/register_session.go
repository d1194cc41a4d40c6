package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionState representa el estado de la caja
type SessionState string

const (
	SessionStateNone   SessionState = "NO_SESSION"
	SessionStateOpen   SessionState = "OPEN"
	SessionStateClosed SessionState = "CLOSED"
)

// RegisterSession representa una sesión de caja (Aggregate Root)
// Un periodo acotado de responsabilidad sobre el cajón, de la apertura al cierre.
type RegisterSession struct {
	ID                  string           `json:"id"`
	OpenedAt            time.Time        `json:"opened_at"`
	ClosedAt            *time.Time       `json:"closed_at,omitempty"`
	OpeningCash         decimal.Decimal  `json:"opening_cash"`
	ClosingCashDeclared *decimal.Decimal `json:"closing_cash_declared,omitempty"`
	ExpectedCash        decimal.Decimal  `json:"expected_cash"`
	CashVariance        *decimal.Decimal `json:"cash_variance,omitempty"`
	ResponsibleUser     string           `json:"responsible_user"`
	IsOpen              bool             `json:"is_open"`
}

// ValidateOpeningCash valida el monto de apertura antes de llamar al backend
func ValidateOpeningCash(openingCash decimal.Decimal) error {
	if openingCash.IsNegative() {
		return ErrNegativeOpeningCash
	}
	return nil
}

// ValidateDeclaredCash valida el monto declarado al cierre antes de llamar al backend
func ValidateDeclaredCash(declaredCash decimal.Decimal) error {
	if declaredCash.IsNegative() {
		return ErrNegativeDeclaredCash
	}
	return nil
}

// State deriva el estado de la máquina de estados
func (s *RegisterSession) State() SessionState {
	if s == nil || s.ID == "" {
		return SessionStateNone
	}
	if s.IsOpen {
		return SessionStateOpen
	}
	return SessionStateClosed
}

// MarkClosed aplica el cierre devuelto por el backend.
// La transición abierta -> cerrada ocurre una sola vez; una sesión cerrada no se reabre.
func (s *RegisterSession) MarkClosed(closed RegisterSession) error {
	if s.State() != SessionStateOpen {
		return ErrSessionNotOpen
	}

	closedAt := closed.ClosedAt
	if closedAt == nil {
		now := time.Now().UTC()
		closedAt = &now
	}

	s.IsOpen = false
	s.ClosedAt = closedAt
	s.ClosingCashDeclared = closed.ClosingCashDeclared
	s.ExpectedCash = closed.ExpectedCash
	s.CashVariance = closed.CashVariance
	return nil
}

// Clone devuelve una copia independiente para lecturas de auditoría
func (s *RegisterSession) Clone() *RegisterSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		c.ClosedAt = &t
	}
	if s.ClosingCashDeclared != nil {
		d := *s.ClosingCashDeclared
		c.ClosingCashDeclared = &d
	}
	if s.CashVariance != nil {
		v := *s.CashVariance
		c.CashVariance = &v
	}
	return &c
}
