package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"caja/src/register/domain/entity"
	"caja/src/register/domain/port"
	"caja/src/shared/infrastructure/metrics"
	"caja/src/shared/infrastructure/requestctx"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultHighValueThreshold monto a partir del cual un movimiento requiere confirmación
var DefaultHighValueThreshold = decimal.NewFromInt(1000)

// snapshotTimeout acota las escrituras locales para que nunca bloqueen el cierre
const snapshotTimeout = 2 * time.Second

// RegisterSessionController coordina el ciclo de vida de la caja:
// apertura, movimientos, cierre con snapshot previo y reconciliación posterior.
// El backend es la autoridad; este controlador mantiene la vista local del terminal.
type RegisterSessionController struct {
	backend         port.RegisterBackend
	snapshots       port.SnapshotRepository
	threshold       decimal.Decimal
	defaultOperator string
	log             logrus.FieldLogger

	mu          sync.Mutex
	session     *entity.RegisterSession
	movements   []entity.CashMovement
	cashSales   decimal.Decimal
	lastSummary *entity.CashSummary

	// transition protege open/close: nunca dos en vuelo a la vez
	transition atomic.Bool
	closing    atomic.Bool
}

// NewRegisterSessionController crea una nueva instancia del controlador
func NewRegisterSessionController(
	backend port.RegisterBackend,
	snapshots port.SnapshotRepository,
	threshold decimal.Decimal,
	defaultOperator string,
	log logrus.FieldLogger,
) *RegisterSessionController {
	if !threshold.IsPositive() {
		threshold = DefaultHighValueThreshold
	}
	return &RegisterSessionController{
		backend:         backend,
		snapshots:       snapshots,
		threshold:       threshold,
		defaultOperator: strings.TrimSpace(defaultOperator),
		log:             log,
		cashSales:       decimal.Zero,
	}
}

// Threshold devuelve el umbral de montos altos vigente
func (c *RegisterSessionController) Threshold() decimal.Decimal {
	return c.threshold
}

// Open abre una nueva sesión de caja
func (c *RegisterSessionController) Open(ctx context.Context, openingCash decimal.Decimal) (*entity.RegisterSession, error) {
	if err := entity.ValidateOpeningCash(openingCash); err != nil {
		return nil, err
	}
	user := c.ActiveUser(ctx)
	if user == "" {
		return nil, entity.ErrNoActiveUser
	}

	c.mu.Lock()
	alreadyOpen := c.session.State() == entity.SessionStateOpen
	c.mu.Unlock()
	if alreadyOpen {
		return nil, entity.ErrSessionAlreadyOpen
	}

	if !c.transition.CompareAndSwap(false, true) {
		return nil, entity.ErrOperationInFlight
	}
	defer c.transition.Store(false)

	opened, err := c.backend.OpenSession(ctx, openingCash, user)
	metrics.RegisterOperations.WithLabelValues("open", metrics.Result(err)).Inc()
	if err != nil {
		c.log.WithError(err).Warn("❌ Register open failed")
		return nil, fmt.Errorf("open register: %w", err)
	}
	if opened == nil || opened.ID == "" {
		return nil, fmt.Errorf("open register: %w", entity.ErrSessionIDRequired)
	}

	session := opened.Clone()
	session.IsOpen = true
	session.ClosedAt = nil
	if session.ResponsibleUser == "" {
		session.ResponsibleUser = user
	}
	if session.OpeningCash.IsZero() {
		session.OpeningCash = openingCash
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}

	c.mu.Lock()
	c.session = session
	c.movements = nil
	c.cashSales = decimal.Zero
	c.lastSummary = nil
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"session_id":   session.ID,
		"opening_cash": session.OpeningCash.String(),
		"user":         session.ResponsibleUser,
	}).Info("✅ Register opened")

	return session.Clone(), nil
}

// Close cierra la sesión abierta.
// PASO 1: validar monto (sin red)
// PASO 2: snapshot previo al cierre si hay movimientos (best effort)
// PASO 3: cierre en backend
// PASO 4: reconciliar closedAt con el historial y mover el snapshot al slot de último cierre
func (c *RegisterSessionController) Close(ctx context.Context, declaredCash decimal.Decimal) (*entity.RegisterSession, error) {
	if err := entity.ValidateDeclaredCash(declaredCash); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.session.State() != entity.SessionStateOpen {
		c.mu.Unlock()
		return nil, entity.ErrSessionNotOpen
	}
	session := c.session.Clone()
	movements := append([]entity.CashMovement(nil), c.movements...)
	c.mu.Unlock()

	if !c.transition.CompareAndSwap(false, true) {
		return nil, entity.ErrOperationInFlight
	}
	defer c.transition.Store(false)
	c.closing.Store(true)
	defer c.closing.Store(false)

	log := c.log.WithField("session_id", session.ID)

	// ========================================================================
	// PASO 2: SNAPSHOT PREVIO AL CIERRE
	// ========================================================================
	var snapshot *entity.CloseSnapshot
	if len(movements) > 0 {
		snap, err := entity.NewCloseSnapshot(session, movements)
		if err == nil {
			// Aunque falle la escritura, la copia en memoria sirve para el slot de último cierre
			snapshot = snap
			if !c.bestEffort(ctx, "save pre-close snapshot", func(ctx context.Context) error {
				return c.snapshots.SavePending(ctx, snap)
			}) {
				metrics.SnapshotWriteFailures.Inc()
			}
		}
	}

	// ========================================================================
	// PASO 3: CIERRE EN BACKEND
	// ========================================================================
	closed, err := c.backend.CloseSession(ctx, session.ID, declaredCash)
	metrics.RegisterOperations.WithLabelValues("close", metrics.Result(err)).Inc()
	if err != nil {
		// El snapshot pendiente se conserva para reintentar o recuperar
		log.WithError(err).Warn("❌ Register close failed, local state unchanged")
		return nil, fmt.Errorf("close register: %w", err)
	}
	if closed == nil {
		closed = &entity.RegisterSession{}
	}
	if closed.ClosingCashDeclared == nil {
		d := declaredCash
		closed.ClosingCashDeclared = &d
	}

	c.mu.Lock()
	if c.session != nil && c.session.ID == session.ID {
		if err := c.session.MarkClosed(*closed); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	result := c.session.Clone()
	c.mu.Unlock()

	log.WithField("declared_cash", declaredCash.String()).Info("✅ Register closed")

	// ========================================================================
	// PASO 4: RECONCILIACIÓN POST-CIERRE
	// ========================================================================
	closedAt, found, err := c.authoritativeClosedAt(ctx, session.ID)
	if err != nil {
		log.WithError(err).Warn("⚠️ Could not refresh register history, pending snapshot kept")
		return result, nil
	}
	if !found {
		log.Warn("⚠️ Closed session missing from history, pending snapshot kept")
		return result, nil
	}

	c.mu.Lock()
	if c.session != nil && c.session.ID == session.ID {
		t := closedAt
		c.session.ClosedAt = &t
		result = c.session.Clone()
	}
	c.mu.Unlock()

	if snapshot == nil {
		// Sin movimientos igual se registra el cierre para que el slot siga al último
		snapshot, err = entity.NewCloseSnapshot(session, nil)
		if err != nil {
			return result, nil
		}
	}
	c.finalizeSnapshot(ctx, snapshot, closedAt)
	return result, nil
}

// AddMovement registra un ingreso o egreso manual.
// Montos >= umbral devuelven ErrHighValueConfirmation salvo que confirmed sea true.
func (c *RegisterSessionController) AddMovement(
	ctx context.Context,
	kind entity.MovementKind,
	amount decimal.Decimal,
	description string,
	confirmed bool,
) (*entity.CashMovement, error) {
	if !amount.IsPositive() {
		return nil, entity.ErrMovementAmount
	}

	c.mu.Lock()
	if c.session.State() != entity.SessionStateOpen {
		c.mu.Unlock()
		return nil, entity.ErrSessionNotOpen
	}
	sessionID := c.session.ID
	c.mu.Unlock()

	if c.closing.Load() {
		return nil, entity.ErrOperationInFlight
	}

	movement, err := entity.NewCashMovement(sessionID, kind, amount, description, c.ActiveUser(ctx))
	if err != nil {
		return nil, err
	}
	if movement.RequiresConfirmation(c.threshold) && !confirmed {
		metrics.CashMovements.WithLabelValues(string(kind), "confirmation_required").Inc()
		return nil, entity.ErrHighValueConfirmation
	}

	recorded, err := c.backend.AddMovement(ctx, movement)
	metrics.CashMovements.WithLabelValues(string(kind), metrics.Result(err)).Inc()
	if err != nil {
		c.log.WithError(err).WithField("session_id", sessionID).Warn("❌ Cash movement failed")
		return nil, fmt.Errorf("add movement: %w", err)
	}

	// Los datos del movimiento son los locales; del backend solo se toma id y hora
	result := *movement
	if recorded != nil {
		if recorded.ID != "" {
			result.ID = recorded.ID
		}
		if !recorded.Timestamp.IsZero() {
			result.Timestamp = recorded.Timestamp
		}
	}

	c.mu.Lock()
	if c.session != nil && c.session.ID == sessionID {
		c.movements = append(c.movements, result)
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"kind":       result.Kind,
		"amount":     result.Amount.String(),
	}).Info("💵 Cash movement recorded")

	return &result, nil
}

// Refresh trae la sesión actual del backend. Hasta que un fetch tenga éxito
// la caja se considera sin sesión.
func (c *RegisterSessionController) Refresh(ctx context.Context) (*entity.RegisterSession, error) {
	if c.transition.Load() {
		return nil, entity.ErrOperationInFlight
	}

	current, err := c.backend.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh register: %w", err)
	}

	if current == nil || current.ID == "" || !current.IsOpen {
		return c.reconcileMissingSession(ctx)
	}

	movements, err := c.backend.ListMovements(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh register movements: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.ID != current.ID {
		c.cashSales = decimal.Zero
		c.lastSummary = nil
	}
	c.session = current.Clone()
	c.movements = append([]entity.CashMovement(nil), movements...)
	return c.session.Clone(), nil
}

// reconcileMissingSession el backend no tiene sesión abierta: si la local seguía
// abierta se busca su cierre en el historial.
func (c *RegisterSessionController) reconcileMissingSession(ctx context.Context) (*entity.RegisterSession, error) {
	c.mu.Lock()
	local := c.session.Clone()
	c.mu.Unlock()

	if local.State() != entity.SessionStateOpen {
		return local, nil
	}

	history, err := c.backend.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh register history: %w", err)
	}

	var closed *entity.RegisterSession
	for i := range history {
		if history[i].ID == local.ID && !history[i].IsOpen {
			closed = &history[i]
			break
		}
	}

	c.mu.Lock()
	if c.session == nil || c.session.ID != local.ID {
		result := c.session.Clone()
		c.mu.Unlock()
		return result, nil
	}
	if closed == nil {
		c.session = nil
		c.movements = nil
		c.cashSales = decimal.Zero
		c.mu.Unlock()
		return nil, nil
	}
	if err := c.session.MarkClosed(*closed); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	result := c.session.Clone()
	c.mu.Unlock()

	c.log.WithField("session_id", local.ID).Info("🔄 Register closed remotely, reconciled from history")

	// Cierre confirmado sin respuesta: el snapshot previo pasa al slot de último cierre
	if closed.ClosedAt != nil {
		c.finalizePending(ctx, local, closed.ClosedAt.UTC())
	}
	return result, nil
}

// finalizePending busca el snapshot pendiente de la sesión y lo finaliza.
// Sin pendiente (sesión sin movimientos) se guarda uno vacío.
func (c *RegisterSessionController) finalizePending(ctx context.Context, session *entity.RegisterSession, closedAt time.Time) {
	var pending *entity.CloseSnapshot
	if !c.bestEffort(ctx, "load pending snapshot", func(ctx context.Context) error {
		snap, err := c.snapshots.GetPending(ctx, session.ID)
		pending = snap
		return err
	}) {
		return
	}
	if pending == nil {
		snap, err := entity.NewCloseSnapshot(session, nil)
		if err != nil {
			return
		}
		pending = snap
	}
	c.finalizeSnapshot(ctx, pending, closedAt)
}

// RefreshSummary trae el resumen de caja del backend; sus ventas en efectivo
// reemplazan el contador local.
func (c *RegisterSessionController) RefreshSummary(ctx context.Context) (*entity.CashSummary, error) {
	c.mu.Lock()
	if c.session.State() != entity.SessionStateOpen {
		c.mu.Unlock()
		return nil, entity.ErrSessionNotOpen
	}
	sessionID := c.session.ID
	c.mu.Unlock()

	summary, err := c.backend.Summary(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("refresh summary: %w", err)
	}
	if summary == nil {
		return nil, nil
	}

	c.mu.Lock()
	if c.session != nil && c.session.ID == sessionID && c.session.IsOpen {
		c.cashSales = summary.CashSalesTotal
		s := *summary
		c.lastSummary = &s
	}
	c.mu.Unlock()
	return summary, nil
}

// RecordCashSale suma al modelo orientativo la parte en efectivo de una venta
func (c *RegisterSessionController) RecordCashSale(amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.State() == entity.SessionStateOpen {
		c.cashSales = c.cashSales.Add(amount)
	}
}

// Reconciliation devuelve el arqueo. Abierta: orientativo. Cerrada: valores del backend.
func (c *RegisterSessionController) Reconciliation() (*entity.CashReconciliation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.State() == entity.SessionStateNone {
		return nil, entity.ErrSessionNotOpen
	}

	income, expense := entity.MovementTotals(c.movements)
	rec := &entity.CashReconciliation{
		SessionID:      c.session.ID,
		OpeningCash:    c.session.OpeningCash,
		IncomeTotal:    income,
		ExpenseTotal:   expense,
		CashSalesTotal: c.cashSales,
	}

	if c.session.IsOpen {
		rec.ExpectedCash = entity.AdvisoryExpectedCash(c.session.OpeningCash, income, c.cashSales, expense)
		return rec, nil
	}

	rec.ExpectedCash = c.session.ExpectedCash
	rec.DeclaredCash = c.session.ClosingCashDeclared
	rec.CashVariance = c.session.CashVariance
	rec.Authoritative = true
	return rec, nil
}

// Session devuelve una copia de la sesión local (nil si no hay)
func (c *RegisterSessionController) Session() *entity.RegisterSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// State devuelve el estado de la máquina de estados
func (c *RegisterSessionController) State() entity.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

// IsOpen indica si se pueden registrar ventas y movimientos.
// Con un cierre en vuelo la caja ya no acepta ventas.
func (c *RegisterSessionController) IsOpen() bool {
	if c.closing.Load() {
		return false
	}
	return c.State() == entity.SessionStateOpen
}

// CurrentSessionID devuelve el id de la sesión local o vacío
func (c *RegisterSessionController) CurrentSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.ID
}

// Movements devuelve una copia del libro de movimientos
func (c *RegisterSessionController) Movements() []entity.CashMovement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.CashMovement(nil), c.movements...)
}

// LastSummary devuelve el último resumen recibido del backend
func (c *RegisterSessionController) LastSummary() *entity.CashSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSummary == nil {
		return nil
	}
	s := *c.lastSummary
	return &s
}

// Closing indica si hay un cierre en vuelo
func (c *RegisterSessionController) Closing() bool {
	return c.closing.Load()
}

// History lista las sesiones recientes del backend
func (c *RegisterSessionController) History(ctx context.Context) ([]entity.RegisterSession, error) {
	sessions, err := c.backend.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("register history: %w", err)
	}
	return sessions, nil
}

// LastClosed devuelve el snapshot del último cierre reconciliado
func (c *RegisterSessionController) LastClosed(ctx context.Context) (*entity.CloseSnapshot, error) {
	if c.snapshots == nil {
		return nil, nil
	}
	return c.snapshots.GetLastClosed(ctx)
}

// RecoverPendingSnapshots reconcilia los snapshots que quedaron pendientes
// (cierre sin respuesta, proceso interrumpido). Devuelve cuántos se finalizaron.
func (c *RegisterSessionController) RecoverPendingSnapshots(ctx context.Context) (int, error) {
	if c.snapshots == nil {
		return 0, nil
	}
	pending, err := c.snapshots.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending snapshots: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	history, err := c.backend.History(ctx)
	if err != nil {
		return 0, fmt.Errorf("recover snapshots: %w", err)
	}
	closedAt := make(map[string]time.Time, len(history))
	for _, s := range history {
		if !s.IsOpen && s.ClosedAt != nil {
			closedAt[s.ID] = *s.ClosedAt
		}
	}

	type candidate struct {
		snapshot *entity.CloseSnapshot
		closedAt time.Time
	}
	var ready []candidate
	for _, snap := range pending {
		if t, ok := closedAt[snap.SessionID]; ok {
			ready = append(ready, candidate{snapshot: snap, closedAt: t})
		} else {
			c.log.WithField("session_id", snap.SessionID).Info("Pending snapshot belongs to a session still open, kept")
		}
	}
	// El más reciente queda último en el slot de último cierre
	sort.Slice(ready, func(i, j int) bool { return ready[i].closedAt.Before(ready[j].closedAt) })

	recovered := 0
	for _, r := range ready {
		if c.finalizeSnapshot(ctx, r.snapshot, r.closedAt) {
			recovered++
		}
	}
	if recovered > 0 {
		c.log.WithField("count", recovered).Info("🔄 Recovered pending close snapshots")
	}
	return recovered, nil
}

// finalizeSnapshot sella el snapshot, lo guarda como último cierre y recién
// entonces borra el pendiente.
func (c *RegisterSessionController) finalizeSnapshot(ctx context.Context, snapshot *entity.CloseSnapshot, closedAt time.Time) bool {
	snapshot.Finalize(closedAt)
	if !c.bestEffort(ctx, "save last closed snapshot", func(ctx context.Context) error {
		return c.snapshots.SaveLastClosed(ctx, snapshot)
	}) {
		return false
	}
	return c.bestEffort(ctx, "delete pending snapshot", func(ctx context.Context) error {
		return c.snapshots.DeletePending(ctx, snapshot.SessionID)
	})
}

func (c *RegisterSessionController) authoritativeClosedAt(ctx context.Context, sessionID string) (time.Time, bool, error) {
	history, err := c.backend.History(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	for _, s := range history {
		if s.ID == sessionID && !s.IsOpen && s.ClosedAt != nil {
			return s.ClosedAt.UTC(), true, nil
		}
	}
	return time.Time{}, false, nil
}

// bestEffort ejecuta una escritura local acotada en tiempo; un fallo se registra
// y nunca interrumpe el flujo principal.
func (c *RegisterSessionController) bestEffort(ctx context.Context, op string, fn func(context.Context) error) (ok bool) {
	if c.snapshots == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Errorf("❌ %s panicked", op)
			ok = false
		}
	}()
	if err := fn(ctx); err != nil {
		c.log.WithError(err).Warnf("⚠️ %s failed", op)
		return false
	}
	return true
}

// ActiveUser devuelve el usuario de la petición o el operador por defecto
func (c *RegisterSessionController) ActiveUser(ctx context.Context) string {
	if user := strings.TrimSpace(requestctx.UserFromContext(ctx)); user != "" {
		return user
	}
	return c.defaultOperator
}
