package worker

// audit_cron.go
// Background goroutine that periodically audits every active register.
// Jobs normally go through the Redis queue; while the circuit breaker is
// open the cron audits inline so the check never silently stops.

import (
	"context"
	"time"

	"estudio/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuditCronConfig struct {
	Auditor    LedgerAuditor
	Dispatcher *Dispatcher
	Worker     *AuditoriaWorker
	Interval   time.Duration
}

// StartAuditCron launches the audit goroutine. It respects ctx for graceful shutdown.
func StartAuditCron(ctx context.Context, cfg AuditCronConfig) {
	if cfg.Interval <= 0 {
		log.Info().Msg("audit_cron: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("audit_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("audit_cron: shutting down")
				return
			case <-ticker.C:
				runAuditTick(ctx, cfg)
			}
		}
	}()
}

func runAuditTick(ctx context.Context, cfg AuditCronConfig) {
	cajas, err := cfg.Auditor.ListarCajas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("audit_cron: failed to list cajas")
		return
	}
	if len(cajas) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(cajas))
	for _, c := range cajas {
		id, err := uuid.Parse(c.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if cfg.Dispatcher != nil && cfg.Dispatcher.CircuitState() != infra.CBOpen {
		err := cfg.Dispatcher.enqueueAuditoria(ctx, ids, "cron")
		if err == nil {
			return
		}
		log.Warn().Err(err).Msg("audit_cron: enqueue failed, auditing inline")
	}

	for _, id := range ids {
		cfg.Worker.auditar(ctx, id, "cron")
	}
}
