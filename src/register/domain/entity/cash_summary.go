package entity

import "github.com/shopspring/decimal"

// CashSummary resumen de caja calculado por el backend
type CashSummary struct {
	SessionID      string           `json:"session_id"`
	OpeningCash    decimal.Decimal  `json:"opening_cash"`
	IncomeTotal    decimal.Decimal  `json:"income_total"`
	ExpenseTotal   decimal.Decimal  `json:"expense_total"`
	CashSalesTotal decimal.Decimal  `json:"cash_sales_total"`
	ExpectedCash   decimal.Decimal  `json:"expected_cash"`
	DeclaredCash   *decimal.Decimal `json:"declared_cash,omitempty"`
	CashVariance   *decimal.Decimal `json:"cash_variance,omitempty"`
	IsOpen         bool             `json:"is_open"`
}

// CashReconciliation modelo de lectura del arqueo.
// Mientras la caja está abierta es orientativo; cerrada, viene del backend.
type CashReconciliation struct {
	SessionID      string           `json:"session_id"`
	OpeningCash    decimal.Decimal  `json:"opening_cash"`
	IncomeTotal    decimal.Decimal  `json:"income_total"`
	ExpenseTotal   decimal.Decimal  `json:"expense_total"`
	CashSalesTotal decimal.Decimal  `json:"cash_sales_total"`
	ExpectedCash   decimal.Decimal  `json:"expected_cash"`
	DeclaredCash   *decimal.Decimal `json:"declared_cash,omitempty"`
	CashVariance   *decimal.Decimal `json:"cash_variance,omitempty"`
	Authoritative  bool             `json:"authoritative"`
}

// AdvisoryExpectedCash apertura + ingresos + ventas en efectivo - egresos
func AdvisoryExpectedCash(openingCash, income, cashSales, expense decimal.Decimal) decimal.Decimal {
	return openingCash.Add(income).Add(cashSales).Sub(expense)
}
