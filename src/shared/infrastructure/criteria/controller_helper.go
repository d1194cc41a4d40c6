package criteria

import (
	"fmt"
	"strconv"

	"caja/src/shared/domain/apperror"
	domainCriteria "caja/src/shared/domain/criteria"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ControllerHelper proporciona funciones base para trabajar con criterios en controllers
type ControllerHelper struct{}

// NewControllerHelper crea una nueva instancia del helper
func NewControllerHelper() *ControllerHelper {
	return &ControllerHelper{}
}

// BuildPaginationFromQuery lee page y page_size (page desde 1, page_size acotado a MaxPageSize)
func (h *ControllerHelper) BuildPaginationFromQuery(c *gin.Context) (*domainCriteria.CriteriaBuilder, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return nil, err
	}
	pageSize, err := intQuery(c, "page_size", DefaultPageSize)
	if err != nil {
		return nil, err
	}
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("%w: page and page_size must be greater than 0", apperror.ErrValidation)
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return domainCriteria.NewCriteriaBuilder().Paginate(page, pageSize), nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", apperror.ErrValidation, key)
	}
	return n, nil
}
