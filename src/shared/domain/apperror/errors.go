package apperror

import (
	"errors"
	"net/http"
)

// Categorías de error compartidas por todos los módulos.
// Los errores de dominio envuelven una categoría con %w para que
// errors.Is funcione tanto con el error específico como con la categoría.
var (
	ErrValidation           = errors.New("validation error")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidSplit         = errors.New("invalid payment split")
	ErrSessionClosed        = errors.New("register session is not open")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrConflict             = errors.New("conflict")
	ErrNotFound             = errors.New("not found")
	ErrNetworkFailure       = errors.New("network failure")
	ErrUnauthenticated      = errors.New("unauthenticated")
)

// Code es un código legible por máquina para el front end
type Code string

const (
	CodeUnknown              Code = "UNKNOWN"
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeInsufficientStock    Code = "INSUFFICIENT_STOCK"
	CodeInsufficientFunds    Code = "INSUFFICIENT_FUNDS"
	CodeInvalidSplit         Code = "INVALID_SPLIT"
	CodeSessionClosed        Code = "SESSION_CLOSED"
	CodeConfirmationRequired Code = "CONFIRMATION_REQUIRED"
	CodeConflict             Code = "CONFLICT"
	CodeNotFound             Code = "NOT_FOUND"
	CodeNetworkFailure       Code = "NETWORK_FAILURE"
	CodeUnauthenticated      Code = "UNAUTHENTICATED"
)

type mapping struct {
	target error
	code   Code
	status int
}

// El orden importa: InvalidSplit se evalúa antes que InsufficientFunds
// porque ambos bloquean la venta pero el mensaje al usuario es distinto.
var mappings = []mapping{
	{ErrUnauthenticated, CodeUnauthenticated, http.StatusUnauthorized},
	{ErrValidation, CodeValidation, http.StatusBadRequest},
	{ErrInsufficientStock, CodeInsufficientStock, http.StatusConflict},
	{ErrInvalidSplit, CodeInvalidSplit, http.StatusUnprocessableEntity},
	{ErrInsufficientFunds, CodeInsufficientFunds, http.StatusUnprocessableEntity},
	{ErrSessionClosed, CodeSessionClosed, http.StatusConflict},
	{ErrConfirmationRequired, CodeConfirmationRequired, http.StatusPreconditionRequired},
	{ErrConflict, CodeConflict, http.StatusConflict},
	{ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ErrNetworkFailure, CodeNetworkFailure, http.StatusBadGateway},
}

// Classify devuelve el código y el status HTTP para un error
func Classify(err error) (Code, int) {
	if err == nil {
		return "", http.StatusOK
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.code, m.status
		}
	}
	return CodeUnknown, http.StatusInternalServerError
}

// IsRetryable indica si el usuario puede reintentar la misma operación sin cambios
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetworkFailure) || errors.Is(err, ErrConflict)
}
