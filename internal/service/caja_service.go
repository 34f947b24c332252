package service

import (
	"context"
	"errors"
	"fmt"

	"estudio/internal/apierror"
	"estudio/internal/calc"
	"estudio/internal/dto"
	"estudio/internal/model"
	"estudio/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovimientoInput describes one posting to a register's ledger.
type MovimientoInput struct {
	CajaID      uuid.UUID
	Tipo        string // model.MovimientoIngreso | model.MovimientoRetiro
	Concepto    string
	Monto       decimal.Decimal
	UsuarioID   uuid.UUID
	SesionID    *uuid.UUID
	ReversaDeID *uuid.UUID
}

// CajaService is the register ledger. It is the only writer of Caja.Saldo.
type CajaService interface {
	// RegistrarMovimientoTx posts a movement inside the caller's transaction.
	// It never opens a transaction of its own.
	RegistrarMovimientoTx(tx *gorm.DB, in MovimientoInput) (*model.MovimientoCaja, error)
	// RevertirMovimientoTx posts the opposite of mov and then deactivates mov.
	RevertirMovimientoTx(tx *gorm.DB, mov *model.MovimientoCaja, usuarioID uuid.UUID) (*model.MovimientoCaja, error)
	// ResolverPorTipoTx returns the active register of the given type.
	ResolverPorTipoTx(tx *gorm.DB, tipo string) (*model.Caja, error)
	// BloquearTx locks several registers up front, in a global order.
	BloquearTx(tx *gorm.DB, cajaIDs ...uuid.UUID) error
	MovimientosActivosDeSesionTx(tx *gorm.DB, sesionID uuid.UUID) ([]model.MovimientoCaja, error)
	ListarCajas(ctx context.Context) ([]dto.CajaResponse, error)
	ListarMovimientos(ctx context.Context, cajaID uuid.UUID, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Auditar(ctx context.Context, cajaID uuid.UUID) (*dto.AuditoriaResponse, error)
}

type cajaService struct {
	repo repository.CajaRepository
	tx   *repository.TxRunner
}

func NewCajaService(repo repository.CajaRepository, tx *repository.TxRunner) CajaService {
	return &cajaService{repo: repo, tx: tx}
}

// ── RegistrarMovimientoTx ─────────────────────────────────────────────────────
// Lock register row → compute saldo nuevo → append movement → write saldo.
// The (caja_id, secuencia) unique index backs up the row lock.

func (s *cajaService) RegistrarMovimientoTx(tx *gorm.DB, in MovimientoInput) (*model.MovimientoCaja, error) {
	if in.Tipo != model.MovimientoIngreso && in.Tipo != model.MovimientoRetiro {
		return nil, apierror.InvalidInput("Tipo de movimiento inválido")
	}
	if !calc.IsPositiveAmount(in.Monto) {
		return nil, ErrMontoNoPositivo
	}

	caja, err := s.repo.LockTx(tx, in.CajaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCajaNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	if !caja.Activo {
		return nil, ErrCajaNoEncontrada
	}

	monto := calc.RoundMoney(in.Monto)
	saldoAnterior := caja.Saldo
	mov := &model.MovimientoCaja{
		CajaID:        caja.ID,
		Tipo:          in.Tipo,
		Concepto:      in.Concepto,
		Monto:         monto,
		SaldoAnterior: saldoAnterior,
		SesionID:      in.SesionID,
		ReversaDeID:   in.ReversaDeID,
		UsuarioID:     in.UsuarioID,
		Activo:        true,
		Secuencia:     caja.UltimaSecuencia + 1,
	}
	mov.SaldoNuevo = calc.RoundMoney(saldoAnterior.Add(mov.Signo()))

	if mov.SaldoNuevo.IsNegative() {
		return nil, fmt.Errorf("%w: saldo actual $%s, monto a retirar $%s",
			ErrSaldoInsuficiente, saldoAnterior.StringFixed(2), monto.StringFixed(2))
	}

	if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSaldoTx(tx, caja.ID, mov.SaldoNuevo, mov.Secuencia); err != nil {
		return nil, err
	}

	log.Info().
		Str("caja_id", caja.ID.String()).
		Str("tipo", mov.Tipo).
		Str("monto", monto.String()).
		Str("saldo_nuevo", mov.SaldoNuevo.String()).
		Int64("secuencia", mov.Secuencia).
		Msg("caja: movimiento registrado")
	return mov, nil
}

// ── RevertirMovimientoTx ──────────────────────────────────────────────────────
// Compensate first, deactivate second. Never the other way round.

func (s *cajaService) RevertirMovimientoTx(tx *gorm.DB, mov *model.MovimientoCaja, usuarioID uuid.UUID) (*model.MovimientoCaja, error) {
	if !mov.Activo {
		return nil, apierror.InvalidInput("El movimiento ya fue revertido")
	}
	tipo := model.MovimientoRetiro
	if mov.Tipo == model.MovimientoRetiro {
		tipo = model.MovimientoIngreso
	}
	origen := mov.ID
	comp, err := s.RegistrarMovimientoTx(tx, MovimientoInput{
		CajaID:      mov.CajaID,
		Tipo:        tipo,
		Concepto:    "Reversión: " + mov.Concepto,
		Monto:       mov.Monto,
		UsuarioID:   usuarioID,
		SesionID:    mov.SesionID,
		ReversaDeID: &origen,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.DesactivarMovimientoTx(tx, mov.ID); err != nil {
		return nil, err
	}
	mov.Activo = false
	return comp, nil
}

func (s *cajaService) BloquearTx(tx *gorm.DB, cajaIDs ...uuid.UUID) error {
	return s.repo.LockManyTx(tx, cajaIDs)
}

func (s *cajaService) MovimientosActivosDeSesionTx(tx *gorm.DB, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	return s.repo.MovimientosActivosPorSesionTx(tx, sesionID)
}

func (s *cajaService) ResolverPorTipoTx(tx *gorm.DB, tipo string) (*model.Caja, error) {
	caja, err := s.repo.FindByTipoTx(tx, tipo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCajaNoEncontrada, tipo)
	}
	return caja, err
}

// ── Read projections ──────────────────────────────────────────────────────────

func (s *cajaService) ListarCajas(ctx context.Context) ([]dto.CajaResponse, error) {
	cajas, err := s.repo.ListActivas(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CajaResponse, len(cajas))
	for i := range cajas {
		resp[i] = cajaToResponse(&cajas[i])
	}
	return resp, nil
}

func (s *cajaService) ListarMovimientos(ctx context.Context, cajaID uuid.UUID, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil || !caja.Activo {
		return nil, ErrCajaNoEncontrada
	}

	movs, total, err := s.repo.ListMovimientos(ctx, cajaID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, len(movs))
	for i := range movs {
		data[i] = movimientoToResponse(&movs[i])
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// ── Auditar ───────────────────────────────────────────────────────────────────
// Replays the full history of a register (reversed movements included) from
// SaldoInicial and checks every snapshot against its predecessor and the live
// balance. Inactive movements must have a compensating movement pointing at them.

func (s *cajaService) Auditar(ctx context.Context, cajaID uuid.UUID) (*dto.AuditoriaResponse, error) {
	var (
		caja *model.Caja
		movs []model.MovimientoCaja
	)
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		var err error
		caja, err = s.repo.FindByIDTx(tx, cajaID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCajaNoEncontrada
		}
		if err != nil {
			return err
		}
		movs, err = s.repo.HistorialTx(tx, cajaID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.AuditoriaResponse{
		CajaID:        caja.ID.String(),
		Saldo:         caja.Saldo,
		Movimientos:   len(movs),
		Discrepancias: []string{},
	}

	revertidos := make(map[uuid.UUID]bool)
	for _, m := range movs {
		if m.ReversaDeID != nil {
			revertidos[*m.ReversaDeID] = true
		}
	}

	esperado := caja.SaldoInicial
	for i, m := range movs {
		if m.Secuencia != int64(i+1) {
			resp.Discrepancias = append(resp.Discrepancias,
				fmt.Sprintf("secuencia %d en la posición %d", m.Secuencia, i+1))
		}
		if !m.SaldoAnterior.Equal(esperado) {
			resp.Discrepancias = append(resp.Discrepancias,
				fmt.Sprintf("movimiento %d: saldo_anterior %s, esperado %s", m.Secuencia, m.SaldoAnterior, esperado))
		}
		if nuevo := calc.RoundMoney(m.SaldoAnterior.Add(m.Signo())); !m.SaldoNuevo.Equal(nuevo) {
			resp.Discrepancias = append(resp.Discrepancias,
				fmt.Sprintf("movimiento %d: saldo_nuevo %s, esperado %s", m.Secuencia, m.SaldoNuevo, nuevo))
		}
		if !m.Activo && !revertidos[m.ID] {
			resp.Discrepancias = append(resp.Discrepancias,
				fmt.Sprintf("movimiento %d inactivo sin reversión", m.Secuencia))
		}
		esperado = m.SaldoNuevo
	}
	resp.SaldoEsperado = esperado

	if !caja.Saldo.Equal(esperado) {
		resp.Discrepancias = append(resp.Discrepancias,
			fmt.Sprintf("saldo %s, esperado %s", caja.Saldo, esperado))
	}
	if caja.UltimaSecuencia != int64(len(movs)) {
		resp.Discrepancias = append(resp.Discrepancias,
			fmt.Sprintf("ultima_secuencia %d con %d movimientos", caja.UltimaSecuencia, len(movs)))
	}
	resp.Consistente = len(resp.Discrepancias) == 0

	if !resp.Consistente {
		log.Error().
			Str("caja_id", resp.CajaID).
			Strs("discrepancias", resp.Discrepancias).
			Msg("caja: auditoría con discrepancias")
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func cajaToResponse(c *model.Caja) dto.CajaResponse {
	return dto.CajaResponse{
		ID:           c.ID.String(),
		Nombre:       c.Nombre,
		Tipo:         c.Tipo,
		SaldoInicial: c.SaldoInicial,
		Saldo:        c.Saldo,
	}
}

func movimientoToResponse(m *model.MovimientoCaja) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:            m.ID.String(),
		CajaID:        m.CajaID.String(),
		Tipo:          m.Tipo,
		Concepto:      m.Concepto,
		Monto:         m.Monto,
		SaldoAnterior: m.SaldoAnterior,
		SaldoNuevo:    m.SaldoNuevo,
		SesionID:      uuidPtrString(m.SesionID),
		ReversaDeID:   uuidPtrString(m.ReversaDeID),
		UsuarioID:     m.UsuarioID.String(),
		Secuencia:     m.Secuencia,
		CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
