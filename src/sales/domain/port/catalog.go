package port

import (
	"context"

	"caja/src/sales/domain/entity"
)

// ProductCatalog consulta de productos con stock disponible
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}
