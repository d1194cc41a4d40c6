package entity

import (
	"fmt"

	"caja/src/shared/domain/apperror"
)

var (
	ErrNegativeOpeningCash    = fmt.Errorf("%w: opening_cash must be greater than or equal to 0", apperror.ErrValidation)
	ErrNegativeDeclaredCash   = fmt.Errorf("%w: declared_cash must be greater than or equal to 0", apperror.ErrValidation)
	ErrMovementAmount         = fmt.Errorf("%w: movement amount must be greater than 0", apperror.ErrValidation)
	ErrDescriptionRequired    = fmt.Errorf("%w: description is required", apperror.ErrValidation)
	ErrInvalidMovementKind    = fmt.Errorf("%w: movement kind must be INCOME or EXPENSE", apperror.ErrValidation)
	ErrNoActiveUser           = fmt.Errorf("%w: an active user is required", apperror.ErrValidation)
	ErrSessionIDRequired      = fmt.Errorf("%w: session id is required", apperror.ErrValidation)
	ErrSessionNotOpen         = fmt.Errorf("%w: register session is not open", apperror.ErrSessionClosed)
	ErrSessionAlreadyOpen     = fmt.Errorf("%w: a register session is already open", apperror.ErrConflict)
	ErrOperationInFlight      = fmt.Errorf("%w: another open/close request is in flight", apperror.ErrConflict)
	ErrHighValueConfirmation  = fmt.Errorf("%w: movement amount reaches the high value threshold", apperror.ErrConfirmationRequired)
	ErrSnapshotNotFinalized   = fmt.Errorf("%w: last closed snapshot needs a closed_at", apperror.ErrValidation)
	ErrMovementSessionMissing = fmt.Errorf("%w: movement must belong to a session", apperror.ErrValidation)
)
