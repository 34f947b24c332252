package handler

import (
	"context"
	"net/http"
	"time"

	"estudio/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	statusConnected = "connected"
	statusError     = "error"
)

type healthProbe struct {
	status  string
	latency time.Duration
}

func probe(ctx context.Context, ping func(context.Context) error) healthProbe {
	start := time.Now()
	p := healthProbe{status: statusConnected}
	if err := ping(ctx); err != nil {
		p.status = statusError
	}
	p.latency = time.Since(start)
	return p
}

// Health pings the ledger store and Redis. Only the store and Redis decide
// the status code; the queue breaker state and the number of pending
// audits are reported alongside. Error details never leave the process.
func Health(db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		store := probe(ctx, func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		cache := probe(ctx, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })

		ok := store.status == statusConnected && cache.status == statusConnected
		body := gin.H{
			"ok":    ok,
			"db":    store.status,
			"redis": cache.status,
			"latency_ms": gin.H{
				"db":    store.latency.Milliseconds(),
				"redis": cache.latency.Milliseconds(),
			},
		}
		if dispatcher != nil {
			body["job_queue"] = dispatcher.CircuitState().String()
		}
		if cache.status == statusConnected {
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueAuditoria); err == nil {
				body["auditorias_pendientes"] = n
			}
		}

		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, body)
	}
}
