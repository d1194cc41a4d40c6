package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"caja/src/sales/application/response"
	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CartUseCase maneja el carrito único de la terminal.
// Los productos se leen del catálogo del backend al agregarlos.
type CartUseCase struct {
	catalog port.ProductCatalog
	log     logrus.FieldLogger

	mu   sync.Mutex
	cart *entity.Cart

	// checkout bloquea cambios al carrito mientras se envía una venta
	checkout atomic.Bool
	// pendingKey clave de idempotencia de un envío sin confirmar; cualquier
	// cambio al carrito la descarta
	pendingKey string
}

// NewCartUseCase crea una nueva instancia del caso de uso
func NewCartUseCase(catalog port.ProductCatalog, log logrus.FieldLogger) *CartUseCase {
	return &CartUseCase{
		catalog: catalog,
		log:     log,
		cart:    entity.NewCart(),
	}
}

// AddProduct agrega un producto validando contra su stock actual en el catálogo
func (uc *CartUseCase) AddProduct(ctx context.Context, productID string, blisterQty, unitQty int) (*entity.CartLine, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, entity.ErrProductIDRequired
	}
	if uc.checkout.Load() {
		return nil, entity.ErrCheckoutInFlight
	}

	product, err := uc.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.checkout.Load() {
		return nil, entity.ErrCheckoutInFlight
	}
	line, err := uc.cart.AddLine(product, blisterQty, unitQty)
	if err != nil {
		return nil, err
	}
	uc.pendingKey = ""

	uc.log.WithFields(logrus.Fields{
		"product_id":  line.ProductID,
		"blister_qty": line.BlisterQty,
		"unit_qty":    line.UnitQty,
	}).Debug("🛒 Cart line added")
	return line, nil
}

// Adjust suma o resta una unidad/blister. Devuelve nil si la línea se eliminó.
func (uc *CartUseCase) Adjust(productID string, axis entity.QuantityAxis, delta int) (*entity.CartLine, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.checkout.Load() {
		return nil, entity.ErrCheckoutInFlight
	}
	line, err := uc.cart.AdjustLine(productID, axis, delta)
	if err != nil {
		return nil, err
	}
	uc.pendingKey = ""
	return line, nil
}

// Remove quita un producto del carrito
func (uc *CartUseCase) Remove(productID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.checkout.Load() {
		return entity.ErrCheckoutInFlight
	}
	if err := uc.cart.RemoveLine(productID); err != nil {
		return err
	}
	uc.pendingKey = ""
	return nil
}

// Clear vacía el carrito
func (uc *CartUseCase) Clear() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.checkout.Load() {
		return entity.ErrCheckoutInFlight
	}
	uc.cart.Clear()
	uc.pendingKey = ""
	return nil
}

// View devuelve las líneas y el total del carrito
func (uc *CartUseCase) View() *response.CartResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return toCartResponse(uc.cart)
}

// Total total actual del carrito
func (uc *CartUseCase) Total() decimal.Decimal {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.cart.Total()
}

// checkoutState carrito congelado para un envío
type checkoutState struct {
	lines          []entity.CartLine
	total          decimal.Decimal
	idempotencyKey uuid.UUID
}

// beginCheckout congela el carrito. La clave de idempotencia se reutiliza
// mientras el carrito no cambie entre intentos.
func (uc *CartUseCase) beginCheckout() (*checkoutState, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if !uc.checkout.CompareAndSwap(false, true) {
		return nil, entity.ErrCheckoutInFlight
	}
	key, err := uuid.Parse(uc.pendingKey)
	if err != nil {
		key = uuid.New()
	}
	return &checkoutState{
		lines:          uc.cart.Lines(),
		total:          uc.cart.Total(),
		idempotencyKey: key,
	}, nil
}

// endCheckout libera el carrito. Una venta confirmada lo vacía; un envío sin
// respuesta conserva la clave para el reintento.
func (uc *CartUseCase) endCheckout(state *checkoutState, confirmed, retryable bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	switch {
	case confirmed:
		uc.cart.Clear()
		uc.pendingKey = ""
	case retryable:
		uc.pendingKey = state.idempotencyKey.String()
	default:
		uc.pendingKey = ""
	}
	uc.checkout.Store(false)
}

func toCartResponse(cart *entity.Cart) *response.CartResponse {
	lines := cart.Lines()
	items := make([]response.CartLineResponse, 0, len(lines))
	for i := range lines {
		items = append(items, response.CartLineResponse{
			CartLine: lines[i],
			Subtotal: lines[i].Subtotal(),
		})
	}
	return &response.CartResponse{
		Lines:      items,
		TotalItems: len(items),
		Total:      cart.Total(),
	}
}
