package usecase

import (
	"context"
	"fmt"
	"time"

	"caja/src/sales/application/request"
	"caja/src/sales/application/response"
	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// journalTimeout acota la escritura en el diario local para no demorar el ticket
const journalTimeout = 2 * time.Second

// POSSaleUseCase caso de uso para venta directa POS desde el carrito
type POSSaleUseCase struct {
	cart        *CartUseCase
	register    port.RegisterGate
	backend     port.SaleBackend
	journal     port.SaleJournalRepository
	methodNames port.PaymentMethodNames
	terminalID  string
	currency    string
	log         logrus.FieldLogger
}

// NewPOSSaleUseCase crea una nueva instancia del caso de uso.
// journal y methodNames pueden ser nil.
func NewPOSSaleUseCase(
	cart *CartUseCase,
	register port.RegisterGate,
	backend port.SaleBackend,
	journal port.SaleJournalRepository,
	methodNames port.PaymentMethodNames,
	terminalID string,
	currency string,
	log logrus.FieldLogger,
) *POSSaleUseCase {
	return &POSSaleUseCase{
		cart:        cart,
		register:    register,
		backend:     backend,
		journal:     journal,
		methodNames: methodNames,
		terminalID:  terminalID,
		currency:    currency,
		log:         log,
	}
}

// Quote concilia el pago contra el total actual del carrito sin enviar nada
func (uc *POSSaleUseCase) Quote(req *request.PaymentRequest) (*response.PaymentQuoteResponse, error) {
	method, err := entity.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	cash, digital := req.Amounts()
	rec, err := entity.ReconcilePayment(method, uc.cart.Total(), cash, digital)
	if err != nil {
		return nil, err
	}

	quote := &response.PaymentQuoteResponse{PaymentReconciliation: *rec, Valid: true}
	if err := rec.Validate(); err != nil {
		code, _ := apperror.Classify(err)
		quote.Valid = false
		quote.Error = err.Error()
		quote.Code = string(code)
	}
	return quote, nil
}

// Execute envía la venta del carrito al backend.
// PASO 1: caja abierta (chequeo local, independiente del backend)
// PASO 2: carrito no vacío y pago conciliado
// PASO 3: envío con clave de idempotencia
// PASO 4: aporte en efectivo a la caja, diario local, carrito vacío, ticket
func (uc *POSSaleUseCase) Execute(ctx context.Context, req *request.PaymentRequest) (*response.SaleReceiptResponse, error) {
	// ========================================================================
	// PASO 1: CAJA ABIERTA
	// ========================================================================
	if !uc.register.IsOpen() {
		return nil, entity.ErrRegisterNotOpen
	}
	sessionID := uc.register.CurrentSessionID()

	method, err := entity.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	cash, digital := req.Amounts()

	// ========================================================================
	// PASO 2: CARRITO Y PAGO
	// ========================================================================
	state, err := uc.cart.beginCheckout()
	if err != nil {
		return nil, err
	}
	confirmed, retryable := false, false
	defer func() { uc.cart.endCheckout(state, confirmed, retryable) }()

	if len(state.lines) == 0 {
		return nil, entity.ErrEmptyCart
	}

	payment, err := entity.ReconcilePayment(method, state.total, cash, digital)
	if err != nil {
		return nil, err
	}
	if err := payment.Validate(); err != nil {
		metrics.SalesSubmitted.WithLabelValues(string(method), "rejected").Inc()
		return nil, err
	}

	sale, err := entity.NewSale(sessionID, uc.terminalID, uc.register.ActiveUser(ctx), state.lines, payment, uc.currency)
	if err != nil {
		return nil, err
	}
	sale.ID = state.idempotencyKey

	log := uc.log.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"session_id": sessionID,
		"method":     method,
		"total":      sale.Total.String(),
	})
	log.Info("🛒 Submitting POS sale")

	// ========================================================================
	// PASO 3: ENVÍO AL BACKEND
	// ========================================================================
	confirmation, err := uc.backend.SubmitSale(ctx, sale, state.idempotencyKey.String())
	metrics.SalesSubmitted.WithLabelValues(string(method), metrics.Result(err)).Inc()
	if err != nil {
		if apperror.IsRetryable(err) {
			retryable = true
			log.WithError(err).Warn("⚠️ Sale not confirmed, cart kept for retry")
		} else {
			log.WithError(err).Warn("❌ Sale rejected by backend")
		}
		return nil, fmt.Errorf("submit sale: %w", err)
	}
	confirmed = true

	if confirmation != nil {
		if id, err := uuid.Parse(confirmation.SaleID); err == nil {
			sale.ID = id
		}
		sale.SaleNumber = confirmation.SaleNumber
		if !confirmation.CreatedAt.IsZero() {
			sale.CreatedAt = confirmation.CreatedAt.UTC()
		}
	}
	if sale.SaleNumber == "" {
		sale.SaleNumber = sale.ID.String()
	}

	// ========================================================================
	// PASO 4: EFECTOS LOCALES
	// ========================================================================
	uc.register.RecordCashSale(sale.CashContribution)
	uc.recordJournal(ctx, sale, log)

	log.WithField("sale_number", sale.SaleNumber).Info("✅ POS sale confirmed")
	return uc.toReceipt(sale), nil
}

// recordJournal escribe la venta en el diario local; un fallo no afecta la venta
func (uc *POSSaleUseCase) recordJournal(ctx context.Context, sale *entity.Sale, log logrus.FieldLogger) {
	if uc.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := uc.journal.Record(ctx, sale); err != nil {
		log.WithError(err).Warn("⚠️ Could not write sale journal")
	}
}

func (uc *POSSaleUseCase) toReceipt(sale *entity.Sale) *response.SaleReceiptResponse {
	lines := make([]response.SaleLineResponse, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		lines = append(lines, response.SaleLineResponse{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			BlisterQty:   l.BlisterQty,
			UnitQty:      l.UnitQty,
			BlisterPrice: l.BlisterPrice,
			UnitPrice:    l.UnitPrice,
			Discount:     l.Discount,
			Subtotal:     l.Subtotal,
		})
	}

	methodName := string(sale.Method)
	if uc.methodNames != nil {
		methodName = uc.methodNames.DisplayName(string(sale.Method))
	}

	return &response.SaleReceiptResponse{
		SaleID:            sale.ID,
		SaleNumber:        sale.SaleNumber,
		SessionID:         sale.SessionID,
		Operator:          sale.Operator,
		Lines:             lines,
		TotalItems:        sale.TotalItems(),
		Total:             sale.Total,
		PaymentMethod:     string(sale.Method),
		PaymentMethodName: methodName,
		CashTendered:      sale.CashTendered,
		DigitalTendered:   sale.DigitalTendered,
		Change:            sale.ChangeDue,
		Currency:          sale.Currency,
		CreatedAt:         sale.CreatedAt,
	}
}
