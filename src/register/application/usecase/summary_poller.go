package usecase

import (
	"context"
	"errors"
	"time"

	"caja/src/register/domain/entity"
	"caja/src/shared/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// summaryRefresher es lo que el poller necesita del controlador de caja
type summaryRefresher interface {
	Closing() bool
	RefreshSummary(ctx context.Context) (*entity.CashSummary, error)
}

// SummaryPoller refresca periódicamente el resumen de caja.
// Se detiene al cancelar el contexto y salta el tick si hay un cierre en vuelo.
type SummaryPoller struct {
	register summaryRefresher
	interval time.Duration
	log      logrus.FieldLogger
}

// NewSummaryPoller crea una nueva instancia del poller
func NewSummaryPoller(register summaryRefresher, interval time.Duration, log logrus.FieldLogger) *SummaryPoller {
	return &SummaryPoller{
		register: register,
		interval: interval,
		log:      log,
	}
}

// Run bloquea hasta que ctx se cancele. Un intervalo <= 0 deshabilita el polling.
func (p *SummaryPoller) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.log.Info("Summary polling disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("Summary poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick ejecuta una sola vuelta del polling y devuelve el resultado registrado
func (p *SummaryPoller) Tick(ctx context.Context) string {
	if p.register.Closing() {
		metrics.SummaryPollTicks.WithLabelValues("skipped").Inc()
		return "skipped"
	}

	_, err := p.register.RefreshSummary(ctx)
	switch {
	case err == nil:
		metrics.SummaryPollTicks.WithLabelValues("refreshed").Inc()
		return "refreshed"
	case errors.Is(err, entity.ErrSessionNotOpen):
		metrics.SummaryPollTicks.WithLabelValues("idle").Inc()
		return "idle"
	default:
		p.log.WithError(err).Debug("summary poll failed")
		metrics.SummaryPollTicks.WithLabelValues("failed").Inc()
		return "failed"
	}
}
