package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estudio/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Postgres SQLSTATEs that mean "another transaction got in the way".
var conflictCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available (lock_timeout)
	"57014": true, // query_canceled (statement timeout / ctx cancel)
}

const movimientoSecuenciaIndex = "idx_movimientos_caja_secuencia"

const (
	errConflicto = "Conflicto de concurrencia, reintente la operación"
	errTimeout   = "La operación excedió el tiempo máximo, reintente"
)

// TxOptions bounds every unit of work run by a TxRunner.
type TxOptions struct {
	MaxWait    time.Duration // lock acquisition (postgres lock_timeout)
	Timeout    time.Duration // whole transaction
	MaxRetries int           // automatic resubmissions of a conflicting unit of work
}

// TxRunner is the unit of work threaded through the ledger and the distribution
// code. Every business event runs exactly one Run; fn receives the transaction
// handle and must do all its reads and writes through it.
type TxRunner struct {
	db   *gorm.DB
	opts TxOptions
}

func NewTxRunner(db *gorm.DB, opts TxOptions) *TxRunner {
	return &TxRunner{db: db, opts: opts}
}

// Run executes fn atomically. Store errors come back as *apierror.Error;
// conflicts are retried up to MaxRetries times before being returned.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if apierror.KindOf(err) != apierror.KindConflict || attempt >= r.opts.MaxRetries || ctx.Err() != nil {
			return err
		}

		wait := time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", wait).Msg("tx: conflict, retrying")
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx *gorm.DB) error) error {
	txCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	err := r.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if r.opts.MaxWait > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.opts.MaxWait.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
	if err != nil {
		return mapTxError(txCtx, err)
	}
	return nil
}

// mapTxError turns a store error into the domain taxonomy. Domain errors
// returned by fn pass through unchanged.
func mapTxError(ctx context.Context, err error) error {
	var domainErr *apierror.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierror.Conflict(errTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if conflictCodes[pgErr.Code] {
			return apierror.Conflict(errConflicto, err)
		}
		if pgErr.Code == "23505" && pgErr.ConstraintName == movimientoSecuenciaIndex {
			return apierror.Conflict(errConflicto, err)
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "UNIQUE constraint failed: movimientos_caja.caja_id, movimientos_caja.secuencia") {
		return apierror.Conflict(errConflicto, err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("Registro no encontrado")
	}
	return apierror.Internal(err)
}
