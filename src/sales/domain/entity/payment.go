package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod forma de pago de una venta
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentDigital PaymentMethod = "DIGITAL"
	PaymentMixed   PaymentMethod = "MIXED"
)

// ParsePaymentMethod acepta los nombres de caja: efectivo, yape, mixto
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CASH", "EFECTIVO":
		return PaymentCash, nil
	case "DIGITAL", "YAPE":
		return PaymentDigital, nil
	case "MIXED", "MIXTO":
		return PaymentMixed, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// PaymentReconciliation resultado de conciliar lo entregado contra el total
type PaymentReconciliation struct {
	Method           PaymentMethod   `json:"method"`
	Total            decimal.Decimal `json:"total"`
	Cash             decimal.Decimal `json:"cash"`
	Digital          decimal.Decimal `json:"digital"`
	Tendered         decimal.Decimal `json:"tendered"`
	ChangeDue        decimal.Decimal `json:"change_due"`
	Shortfall        decimal.Decimal `json:"shortfall"`
	CashContribution decimal.Decimal `json:"cash_contribution"`
}

// ReconcilePayment calcula vuelto, faltante y aporte al cajón.
// Solo el monto del método elegido cuenta: en CASH se ignora digital y viceversa.
// Devuelve error solo para entradas inválidas; la suficiencia se evalúa con Validate.
func ReconcilePayment(method PaymentMethod, total, cash, digital decimal.Decimal) (*PaymentReconciliation, error) {
	if cash.IsNegative() || digital.IsNegative() || total.IsNegative() {
		return nil, ErrNegativeTendered
	}

	rec := &PaymentReconciliation{
		Method: method,
		Total:  total,
	}
	switch method {
	case PaymentCash:
		rec.Cash = cash
		rec.Digital = decimal.Zero
		rec.CashContribution = total
	case PaymentDigital:
		rec.Cash = decimal.Zero
		rec.Digital = digital
		rec.CashContribution = decimal.Zero
	case PaymentMixed:
		rec.Cash = cash
		rec.Digital = digital
		rec.CashContribution = decimal.Max(decimal.Zero, total.Sub(digital))
	default:
		return nil, ErrInvalidPaymentMethod
	}

	rec.Tendered = rec.Cash.Add(rec.Digital)
	rec.ChangeDue = decimal.Max(decimal.Zero, rec.Tendered.Sub(total))
	rec.Shortfall = decimal.Max(decimal.Zero, total.Sub(rec.Tendered))
	return rec, nil
}

// Validate bloquea la venta si el pago no alcanza o el split mixto está incompleto
func (r *PaymentReconciliation) Validate() error {
	if r.Method == PaymentMixed && (!r.Cash.IsPositive() || !r.Digital.IsPositive()) {
		return ErrInvalidSplit
	}
	if r.Tendered.LessThan(r.Total) {
		return ErrInsufficientPayment
	}
	return nil
}
