package client

import (
	"context"
	"net/http"
	"time"

	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	"caja/src/shared/infrastructure/backend"

	"github.com/shopspring/decimal"
)

// saleLineRequest línea enviada al backend
type saleLineRequest struct {
	ProductID  string          `json:"product_id"`
	BlisterQty int             `json:"blister_qty"`
	UnitQty    int             `json:"unit_qty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// saleRequest cuerpo de POST /api/v1/ventas
type saleRequest struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"session_id"`
	PaymentMethod string            `json:"payment_method"`
	Total         decimal.Decimal   `json:"total"`
	Cash          decimal.Decimal   `json:"cash"`
	Digital       decimal.Decimal   `json:"digital"`
	Change        decimal.Decimal   `json:"change"`
	Currency      string            `json:"currency"`
	Operator      string            `json:"operator,omitempty"`
	Lines         []saleLineRequest `json:"lines"`
}

// saleResponse respuesta del backend al aceptar la venta
type saleResponse struct {
	ID         string    `json:"id"`
	SaleNumber string    `json:"sale_number"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaleClient envía ventas al back-office
type SaleClient struct {
	backend *backend.Client
}

// NewSaleClient crea una nueva instancia del cliente de ventas
func NewSaleClient(b *backend.Client) port.SaleBackend {
	return &SaleClient{backend: b}
}

// SubmitSale registra la venta. El header Idempotency-Key evita duplicados en reintentos.
func (c *SaleClient) SubmitSale(ctx context.Context, sale *entity.Sale, idempotencyKey string) (*port.SaleConfirmation, error) {
	lines := make([]saleLineRequest, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		lines = append(lines, saleLineRequest{
			ProductID:  l.ProductID,
			BlisterQty: l.BlisterQty,
			UnitQty:    l.UnitQty,
			Subtotal:   l.Subtotal,
		})
	}
	req := saleRequest{
		ID:            sale.ID.String(),
		SessionID:     sale.SessionID,
		PaymentMethod: string(sale.Method),
		Total:         sale.Total,
		Cash:          sale.CashTendered,
		Digital:       sale.DigitalTendered,
		Change:        sale.ChangeDue,
		Currency:      sale.Currency,
		Operator:      sale.Operator,
		Lines:         lines,
	}

	var resp saleResponse
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := c.backend.Do(ctx, http.MethodPost, "/api/v1/ventas", req, &resp, headers); err != nil {
		return nil, err
	}
	return &port.SaleConfirmation{
		SaleID:     resp.ID,
		SaleNumber: resp.SaleNumber,
		CreatedAt:  resp.CreatedAt,
	}, nil
}
