package worker

// dlq.go: dead letter queue for audits that found a broken ledger or could
// not run at all. One Redis list per source queue, dlq:{queue}, newest
// first and capped at MaxDLQLen so a flapping register cannot grow it
// without bound. Administrators read it through GET /v1/auditorias/pendientes.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	MaxDLQLen = 1000
)

// DLQEntry is one failed audit.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	CajaID        string          `json:"caja_id,omitempty"`
	Origen        string          `json:"origen,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	Attempts      int             `json:"attempts"`
	FailedAt      time.Time       `json:"failed_at"`
}

// SendToDLQ records entry under queue's DLQ. Redis errors are logged, not
// returned: the audit already failed and there is nothing left to retry.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, entry DLQEntry) {
	entry.OriginalQueue = queue
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, MaxDLQLen-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("caja_id", entry.CajaID).Msg("dlq: failed to push entry")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("caja_id", entry.CajaID).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: audit moved to dead letter queue")
}

func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// DLQEntries returns up to limit entries, newest first.
func DLQEntries(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DLQEntry, error) {
	if limit <= 0 || limit > MaxDLQLen {
		limit = MaxDLQLen
	}
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DLQEntry, 0, len(raw))
	for _, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			log.Warn().Err(err).Msg("dlq: skipping malformed entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
