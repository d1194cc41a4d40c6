package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caja/src/register/domain/entity"
	"caja/src/shared/domain/apperror"

	"github.com/shopspring/decimal"
)

// fakeBackend implementa port.RegisterBackend en memoria
type fakeBackend struct {
	mu sync.Mutex

	current   *entity.RegisterSession
	history   []entity.RegisterSession
	movements map[string][]entity.CashMovement
	summary   *entity.CashSummary

	openErr     error
	closeErr    error
	historyErr  error
	movementErr error

	// closeResponse permite simular respuestas incompletas del backend
	closeResponse *entity.RegisterSession
	// closeHook se ejecuta dentro de CloseSession antes de responder
	closeHook func()

	openCalls     int
	closeCalls    int
	movementCalls int
	historyCalls  int
	seq           int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{movements: map[string][]entity.CashMovement{}}
}

func (f *fakeBackend) CurrentSession(ctx context.Context) (*entity.RegisterSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.Clone(), nil
}

func (f *fakeBackend) OpenSession(ctx context.Context, openingCash decimal.Decimal, user string) (*entity.RegisterSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.seq++
	s := &entity.RegisterSession{
		ID:              fmt.Sprintf("caja-%d", f.seq),
		OpenedAt:        time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		OpeningCash:     openingCash,
		ResponsibleUser: user,
		IsOpen:          true,
	}
	f.current = s.Clone()
	return s, nil
}

func (f *fakeBackend) CloseSession(ctx context.Context, sessionID string, declaredCash decimal.Decimal) (*entity.RegisterSession, error) {
	f.mu.Lock()
	f.closeCalls++
	hook := f.closeHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	closedAt := time.Date(2026, 5, 4, 21, 30, 0, 0, time.UTC)
	closed := entity.RegisterSession{
		ID:                  sessionID,
		ClosedAt:            &closedAt,
		ClosingCashDeclared: &declaredCash,
		ExpectedCash:        decimal.NewFromInt(160),
		IsOpen:              false,
	}
	variance := declaredCash.Sub(closed.ExpectedCash)
	closed.CashVariance = &variance
	f.history = append(f.history, closed)
	f.current = nil
	if f.closeResponse != nil {
		r := *f.closeResponse
		return &r, nil
	}
	return &closed, nil
}

func (f *fakeBackend) History(ctx context.Context) ([]entity.RegisterSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return append([]entity.RegisterSession(nil), f.history...), nil
}

func (f *fakeBackend) AddMovement(ctx context.Context, movement *entity.CashMovement) (*entity.CashMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movementCalls++
	if f.movementErr != nil {
		return nil, f.movementErr
	}
	f.seq++
	// El backend responde solo con el id, como hace la API real
	f.movements[movement.SessionID] = append(f.movements[movement.SessionID], *movement)
	return &entity.CashMovement{ID: fmt.Sprintf("mov-%d", f.seq)}, nil
}

func (f *fakeBackend) ListMovements(ctx context.Context, sessionID string) ([]entity.CashMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.CashMovement(nil), f.movements[sessionID]...), nil
}

func (f *fakeBackend) Summary(ctx context.Context, sessionID string) (*entity.CashSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summary == nil {
		return nil, fmt.Errorf("%w: summary unavailable", apperror.ErrNetworkFailure)
	}
	s := *f.summary
	return &s, nil
}

// fakeSnapshots implementa port.SnapshotRepository en memoria
type fakeSnapshots struct {
	mu         sync.Mutex
	pending    map[string]*entity.CloseSnapshot
	lastClosed *entity.CloseSnapshot
	saveErr    error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{pending: map[string]*entity.CloseSnapshot{}}
}

func cloneSnapshot(s *entity.CloseSnapshot) *entity.CloseSnapshot {
	c := *s
	c.Movements = append([]entity.CashMovement(nil), s.Movements...)
	return &c
}

func (f *fakeSnapshots) SavePending(ctx context.Context, snapshot *entity.CloseSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.pending[snapshot.SessionID] = cloneSnapshot(snapshot)
	return nil
}

func (f *fakeSnapshots) GetPending(ctx context.Context, sessionID string) (*entity.CloseSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.pending[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneSnapshot(s), nil
}

func (f *fakeSnapshots) ListPending(ctx context.Context) ([]*entity.CloseSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.CloseSnapshot, 0, len(f.pending))
	for _, s := range f.pending {
		out = append(out, cloneSnapshot(s))
	}
	return out, nil
}

func (f *fakeSnapshots) DeletePending(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, sessionID)
	return nil
}

func (f *fakeSnapshots) SaveLastClosed(ctx context.Context, snapshot *entity.CloseSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastClosed = cloneSnapshot(snapshot)
	return nil
}

func (f *fakeSnapshots) GetLastClosed(ctx context.Context) (*entity.CloseSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastClosed == nil {
		return nil, nil
	}
	return cloneSnapshot(f.lastClosed), nil
}

var errOffline = fmt.Errorf("%w: connection refused", apperror.ErrNetworkFailure)
