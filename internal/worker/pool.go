package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"estudio/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria = "jobs:auditoria"

	jobAuditoria = "auditoria"
)

// popErrorBackoff is how long a worker waits after BRPOP fails for any
// reason other than an empty queue.
var popErrorBackoff = time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AuditoriaJobPayload asks the pool to replay the ledger of each listed register.
type AuditoriaJobPayload struct {
	CajaIDs []string `json:"caja_ids"`
	Origen  string   `json:"origen"` // "evento" | "cron"
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. Pushes go through a circuit
// breaker so a Redis outage fails fast instead of stalling request handlers.
type Dispatcher struct {
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewDispatcher(rdb *redis.Client, cb *infra.CircuitBreaker) *Dispatcher {
	return &Dispatcher{rdb: rdb, cb: cb}
}

// EnqueueAuditoria pushes an audit job for the given registers.
func (d *Dispatcher) EnqueueAuditoria(ctx context.Context, cajaIDs []uuid.UUID) error {
	return d.enqueueAuditoria(ctx, cajaIDs, "evento")
}

func (d *Dispatcher) enqueueAuditoria(ctx context.Context, cajaIDs []uuid.UUID, origen string) error {
	ids := make([]string, 0, len(cajaIDs))
	seen := make(map[uuid.UUID]bool, len(cajaIDs))
	for _, id := range cajaIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id.String())
		}
	}
	return d.enqueue(ctx, QueueAuditoria, jobAuditoria, AuditoriaJobPayload{CajaIDs: ids, Origen: origen})
}

// CircuitState exposes the breaker state for the health endpoint.
func (d *Dispatcher) CircuitState() infra.CBState { return d.cb.State() }

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.cb.Execute(func() error {
		return d.rdb.LPush(ctx, queue, encoded).Err()
	})
}

// StartWorkerPool launches numWorkers goroutines consuming the audit queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, aw *AuditoriaWorker) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, aw)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, aw *AuditoriaWorker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueAuditoria).Result()
			if err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				// Redis down: BRPOP fails without blocking, so back off
				// instead of spinning on refused connections.
				log.Warn().Err(err).Int("worker", id).Dur("backoff", popErrorBackoff).Msg("worker: pop failed")
				select {
				case <-ctx.Done():
				case <-time.After(popErrorBackoff):
				}
				continue
			}
			if err != nil || len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], aw)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, aw *AuditoriaWorker) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case jobAuditoria:
		aw.Process(ctx, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}
