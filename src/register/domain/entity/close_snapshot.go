package entity

import "time"

// CloseSnapshot copia durable de los movimientos de una sesión tomada antes del cierre.
// Protege el libro de movimientos si el cierre se aplica en el backend pero la
// respuesta nunca llega al terminal.
type CloseSnapshot struct {
	SessionID  string         `json:"session_id"`
	OpenedAt   time.Time      `json:"opened_at"`
	ClosedAt   *time.Time     `json:"closed_at,omitempty"`
	Movements  []CashMovement `json:"movements"`
	CapturedAt time.Time      `json:"captured_at"`
}

// NewCloseSnapshot captura el estado previo al cierre
func NewCloseSnapshot(session *RegisterSession, movements []CashMovement) (*CloseSnapshot, error) {
	if session == nil || session.ID == "" {
		return nil, ErrSessionIDRequired
	}
	copied := make([]CashMovement, len(movements))
	copy(copied, movements)
	return &CloseSnapshot{
		SessionID:  session.ID,
		OpenedAt:   session.OpenedAt,
		Movements:  copied,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// Finalize sella el snapshot con la hora de cierre autoritativa del backend
func (s *CloseSnapshot) Finalize(closedAt time.Time) {
	t := closedAt.UTC()
	s.ClosedAt = &t
}

// IsFinalized indica si el snapshot ya tiene hora de cierre
func (s *CloseSnapshot) IsFinalized() bool {
	return s.ClosedAt != nil
}
