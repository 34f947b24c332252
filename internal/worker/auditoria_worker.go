package worker

// auditoria_worker.go
// Replays the ledger of each register named in a QueueAuditoria job.
// A register whose history does not reproduce its balance is pushed to the
// DLQ with the discrepancies so an operator can inspect it.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"estudio/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxAuditoriaAttempts bounds the retries of a single register audit on store errors.
const MaxAuditoriaAttempts = 3

// LedgerAuditor is the slice of the register ledger the worker needs.
type LedgerAuditor interface {
	Auditar(ctx context.Context, cajaID uuid.UUID) (*dto.AuditoriaResponse, error)
	ListarCajas(ctx context.Context) ([]dto.CajaResponse, error)
}

type AuditoriaWorker struct {
	auditor LedgerAuditor
	rdb     *redis.Client
	backoff time.Duration
}

func NewAuditoriaWorker(auditor LedgerAuditor, rdb *redis.Client) *AuditoriaWorker {
	return &AuditoriaWorker{auditor: auditor, rdb: rdb, backoff: time.Second}
}

// Process handles a single audit job:
//  1. Parse AuditoriaJobPayload
//  2. Audit each register, retrying store errors with exponential backoff
//  3. Inconsistent registers and exhausted retries go to the DLQ
func (w *AuditoriaWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AuditoriaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("auditoria_worker: invalid payload")
		return
	}

	for _, s := range payload.CajaIDs {
		cajaID, err := uuid.Parse(s)
		if err != nil {
			log.Error().Str("caja_id", s).Msg("auditoria_worker: invalid caja_id")
			continue
		}
		w.auditar(ctx, cajaID, payload.Origen)
	}
}

// auditar returns the audit result, or nil when the audit could not run.
func (w *AuditoriaWorker) auditar(ctx context.Context, cajaID uuid.UUID, origen string) *dto.AuditoriaResponse {
	var res *dto.AuditoriaResponse
	attempts := 0
	err := withRetry(ctx, MaxAuditoriaAttempts, w.backoff, func(int) error {
		attempts++
		var err error
		res, err = w.auditor.Auditar(ctx, cajaID)
		return err
	})

	entry := DLQEntry{
		JobType:  jobAuditoria,
		CajaID:   cajaID.String(),
		Origen:   origen,
		Payload:  []byte(fmt.Sprintf(`{"caja_id":%q,"origen":%q}`, cajaID.String(), origen)),
		Attempts: attempts,
	}
	if err != nil {
		entry.Reason = fmt.Sprintf("auditoría fallida tras %d intentos: %s", attempts, err)
		SendToDLQ(ctx, w.rdb, QueueAuditoria, entry)
		return nil
	}
	if !res.Consistente {
		entry.Reason = strings.Join(res.Discrepancias, "; ")
		SendToDLQ(ctx, w.rdb, QueueAuditoria, entry)
		return res
	}

	log.Debug().
		Str("caja_id", res.CajaID).
		Str("saldo", res.Saldo.String()).
		Int("movimientos", res.Movimientos).
		Str("origen", origen).
		Msg("auditoria_worker: caja consistente")
	return res
}

// withRetry calls fn up to maxAttempts times, waiting base, 2·base, 4·base … between attempts.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
