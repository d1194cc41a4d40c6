package entity

import (
	"fmt"

	"caja/src/shared/domain/apperror"
)

var (
	ErrProductIDRequired  = fmt.Errorf("%w: product_id is required", apperror.ErrValidation)
	ErrInvalidPrice       = fmt.Errorf("%w: price must be greater than or equal to 0", apperror.ErrValidation)
	ErrInvalidDiscount    = fmt.Errorf("%w: discount must be greater than or equal to 0", apperror.ErrValidation)
	ErrInvalidBlisterSize = fmt.Errorf("%w: units_per_blister must be greater than 0", apperror.ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be greater than or equal to 0", apperror.ErrValidation)
	ErrZeroQuantity       = fmt.Errorf("%w: at least one blister or unit is required", apperror.ErrValidation)
	ErrNoBlisterPricing   = fmt.Errorf("%w: product is not sold by blister", apperror.ErrValidation)
	ErrQuantityAtZero     = fmt.Errorf("%w: quantity is already 0", apperror.ErrValidation)
	ErrInvalidDelta       = fmt.Errorf("%w: delta must be +1 or -1", apperror.ErrValidation)
	ErrInvalidAxis        = fmt.Errorf("%w: axis must be BLISTER or UNIT", apperror.ErrValidation)
	ErrEmptyCart          = fmt.Errorf("%w: cart is empty", apperror.ErrValidation)

	ErrInsufficientStock = fmt.Errorf("%w: requested quantity exceeds available stock", apperror.ErrInsufficientStock)
	ErrLineNotFound      = fmt.Errorf("%w: product is not in the cart", apperror.ErrNotFound)
	ErrProductNotFound   = fmt.Errorf("%w: product not found", apperror.ErrNotFound)

	ErrInvalidPaymentMethod = fmt.Errorf("%w: payment method must be CASH, DIGITAL or MIXED", apperror.ErrValidation)
	ErrNegativeTendered     = fmt.Errorf("%w: tendered amounts must be greater than or equal to 0", apperror.ErrValidation)
	ErrInsufficientPayment  = fmt.Errorf("%w: tendered amount does not cover the total", apperror.ErrInsufficientFunds)
	ErrInvalidSplit         = fmt.Errorf("%w: mixed payment needs both a cash and a digital amount", apperror.ErrInvalidSplit)

	ErrCheckoutInFlight = fmt.Errorf("%w: a sale is being submitted", apperror.ErrConflict)
	ErrRegisterNotOpen  = fmt.Errorf("%w: open the register before selling", apperror.ErrSessionClosed)
)
