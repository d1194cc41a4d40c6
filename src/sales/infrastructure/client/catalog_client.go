package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/infrastructure/backend"

	"github.com/shopspring/decimal"
)

// productResponse representa la respuesta del catálogo para un producto
type productResponse struct {
	ProductID       string           `json:"product_id"`
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Discount        decimal.Decimal  `json:"discount"`
	BlisterPrice    *decimal.Decimal `json:"blister_price"`
	UnitsPerBlister int              `json:"units_per_blister"`
	AvailableStock  int              `json:"available_stock"`
}

// CatalogClient cliente HTTP del catálogo de productos del back-office
type CatalogClient struct {
	backend *backend.Client
}

// NewCatalogClient crea una nueva instancia del cliente de catálogo
func NewCatalogClient(b *backend.Client) port.ProductCatalog {
	return &CatalogClient{backend: b}
}

// GetProduct obtiene un producto con su stock disponible
func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	var resp productResponse
	path := fmt.Sprintf("/api/v1/products/%s", url.PathEscape(productID))
	err := c.backend.Do(ctx, http.MethodGet, path, nil, &resp, nil)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}

	id := resp.ProductID
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		id = productID
	}
	product := &entity.Product{
		ID:              id,
		Name:            resp.Name,
		UnitPrice:       resp.UnitPrice,
		Discount:        resp.Discount,
		BlisterPrice:    resp.BlisterPrice,
		UnitsPerBlister: resp.UnitsPerBlister,
		AvailableStock:  resp.AvailableStock,
	}
	// Un precio de blister sin tamaño de blister no sirve para vender por blister
	if product.BlisterPrice != nil && product.UnitsPerBlister <= 0 {
		product.BlisterPrice = nil
	}
	return product, nil
}
