package request

import "github.com/shopspring/decimal"

// OpenRegisterRequest request para abrir caja
type OpenRegisterRequest struct {
	OpeningCash *decimal.Decimal `json:"opening_cash"`
}

// CloseRegisterRequest request para cerrar caja con el efectivo contado
type CloseRegisterRequest struct {
	DeclaredCash *decimal.Decimal `json:"declared_cash"`
}

// CashMovementRequest request para registrar un ingreso o egreso manual.
// Confirmed debe ser true para montos iguales o mayores al umbral.
type CashMovementRequest struct {
	Kind        string           `json:"kind" binding:"required"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Confirmed   bool             `json:"confirmed"`
}
