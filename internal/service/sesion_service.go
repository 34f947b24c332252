package service

import (
	"context"
	"errors"
	"time"

	"estudio/internal/apierror"
	"estudio/internal/calc"
	"estudio/internal/dto"
	"estudio/internal/model"
	"estudio/internal/repository"
	"estudio/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxProximas = 20

// SesionService is the session financial orchestrator. Every mutating method
// is one unit of work: ledger postings, child rows and the distribution commit
// together or not at all.
type SesionService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearSesionRequest) (*dto.SesionResponse, error)
	Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarSesionRequest) (*dto.SesionResponse, error)
	AgregarLiquidacion(ctx context.Context, usuarioID, id uuid.UUID, req dto.LiquidacionRequest) (*dto.LiquidacionResponse, error)
	AgregarIngresoExtra(ctx context.Context, usuarioID, id uuid.UUID, req dto.ConceptoMontoRequest) (*dto.ConceptoMontoResponse, error)
	AgregarGasto(ctx context.Context, usuarioID, id uuid.UUID, req dto.ConceptoMontoRequest) (*dto.ConceptoMontoResponse, error)
	ActualizarPorcentajes(ctx context.Context, usuarioID, id uuid.UUID, req dto.PorcentajesRequest) (*dto.DistribucionResponse, error)
	Eliminar(ctx context.Context, usuarioID, id uuid.UUID) error

	ObtenerDetalle(ctx context.Context, id uuid.UUID) (*dto.SesionResponse, error)
	Listar(ctx context.Context, filter dto.SesionFilter) (*dto.SesionListResponse, error)
	Proximas(ctx context.Context) ([]dto.SesionResponse, error)
}

type sesionService struct {
	tx           *repository.TxRunner
	repo         repository.SesionRepository
	paquetes     repository.PaqueteRepository
	cajas        CajaService
	distribucion DistribucionService
	dispatcher   *worker.Dispatcher
	now          func() time.Time
	loc          *time.Location
}

// SesionOption customizes a SesionService.
type SesionOption func(*sesionService)

// WithZonaHoraria sets the zone whose calendar decides which day is today.
// Session dates are plain calendar days, so this is the studio's zone.
func WithZonaHoraria(loc *time.Location) SesionOption {
	return func(s *sesionService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithReloj replaces time.Now.
func WithReloj(now func() time.Time) SesionOption {
	return func(s *sesionService) { s.now = now }
}

func NewSesionService(
	tx *repository.TxRunner,
	repo repository.SesionRepository,
	paquetes repository.PaqueteRepository,
	cajas CajaService,
	distribucion DistribucionService,
	dispatcher *worker.Dispatcher,
	opts ...SesionOption,
) SesionService {
	s := &sesionService{
		tx:           tx,
		repo:         repo,
		paquetes:     paquetes,
		cajas:        cajas,
		distribucion: distribucion,
		dispatcher:   dispatcher,
		now:          time.Now,
		loc:          time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Crear ─────────────────────────────────────────────────────────────────────
//   1. Validate times and amounts (before any write)
//   2. BEGIN TX: load paquete, resolve + lock banco/ahorro, create sesion
//   3. anticipo > 0  → ingreso on banco
//   4. montoCaja > 0 → ingreso on ahorro
//   5. distribution with the package's default percentages
//   6. COMMIT, then (async) audit the touched registers

func (s *sesionService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearSesionRequest) (*dto.SesionResponse, error) {
	fecha, err := parseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}
	if !calc.IsValidTimeRange(req.HoraInicial, req.HoraFinal) {
		return nil, ErrHorarioInvalido
	}
	if !calc.IsValidAmount(req.Anticipo) || !calc.IsValidAmount(req.MontoCaja) {
		return nil, ErrMontoInvalido
	}
	paqueteID, err := uuid.Parse(req.PaqueteID)
	if err != nil {
		return nil, apierror.InvalidInput("paquete_id inválido")
	}

	anticipo := calc.RoundMoney(req.Anticipo)
	montoCaja := calc.RoundMoney(req.MontoCaja)

	var sesion model.Sesion
	var tocadas []uuid.UUID
	txErr := s.tx.Run(ctx, func(tx *gorm.DB) error {
		tocadas = nil

		paquete, err := s.cargarPaqueteActivoTx(tx, paqueteID)
		if err != nil {
			return err
		}

		var banco, ahorro *model.Caja
		if anticipo.IsPositive() {
			if banco, err = s.cajas.ResolverPorTipoTx(tx, model.TipoCajaBanco); err != nil {
				return err
			}
			tocadas = append(tocadas, banco.ID)
		}
		if montoCaja.IsPositive() {
			if ahorro, err = s.cajas.ResolverPorTipoTx(tx, model.TipoCajaAhorro); err != nil {
				return err
			}
			tocadas = append(tocadas, ahorro.ID)
		}
		if err := s.cajas.BloquearTx(tx, tocadas...); err != nil {
			return err
		}

		sesion = model.Sesion{
			Fecha:            fecha,
			HoraInicial:      req.HoraInicial,
			HoraFinal:        req.HoraFinal,
			NombreCliente:    req.NombreCliente,
			CelularCliente:   req.CelularCliente,
			PaqueteID:        paquete.ID,
			Especificaciones: req.Especificaciones,
			Comentario:       req.Comentario,
			Anticipo:         anticipo,
			Restante:         restanteDe(paquete.Precio, anticipo),
			MontoCaja:        montoCaja,
			UsuarioID:        usuarioID,
			Estado:           model.EstadoSesionActiva,
			Activo:           true,
		}
		if err := s.repo.CreateTx(tx, &sesion); err != nil {
			return err
		}

		if banco != nil {
			if _, err := s.cajas.RegistrarMovimientoTx(tx, MovimientoInput{
				CajaID:    banco.ID,
				Tipo:      model.MovimientoIngreso,
				Concepto:  "Anticipo de sesión - " + sesion.NombreCliente,
				Monto:     anticipo,
				UsuarioID: usuarioID,
				SesionID:  &sesion.ID,
			}); err != nil {
				return err
			}
		}
		if ahorro != nil {
			if _, err := s.cajas.RegistrarMovimientoTx(tx, MovimientoInput{
				CajaID:    ahorro.ID,
				Tipo:      model.MovimientoIngreso,
				Concepto:  "Ahorro de sesión - " + sesion.NombreCliente,
				Monto:     montoCaja,
				UsuarioID: usuarioID,
				SesionID:  &sesion.ID,
			}); err != nil {
				return err
			}
		}

		_, err = s.distribucion.RecalcularTx(tx, &sesion, &calc.Porcentajes{
			A: paquete.PorcentajeA, B: paquete.PorcentajeB, C: paquete.PorcentajeC,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("anticipo", anticipo.String()).
		Str("monto_caja", montoCaja.String()).
		Msg("sesion: creada")
	s.encolarAuditoria(ctx, tocadas)

	return s.ObtenerDetalle(ctx, sesion.ID)
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// General fields plus UpdateFinancials:
//   - paquete_id changed → restante = nuevo precio − anticipo, split with the new package's percentages
//   - anticipo changed   → restante = precio − anticipo, split with the stored percentages
//   - monto_caja changed → split with the stored percentages
//   - restante (manual)  → only accepted when neither anticipo nor paquete_id is sent
// No movement is posted: the advance movement from Crear is left as it was.

func (s *sesionService) Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarSesionRequest) (*dto.SesionResponse, error) {
	if req.Restante != nil && (req.Anticipo != nil || req.PaqueteID != nil) {
		return nil, ErrRestanteManual
	}
	for _, m := range []*decimal.Decimal{req.Anticipo, req.MontoCaja, req.Restante} {
		if m != nil && !calc.IsValidAmount(*m) {
			return nil, ErrMontoInvalido
		}
	}
	var fecha *time.Time
	if req.Fecha != nil {
		f, err := parseFecha(*req.Fecha)
		if err != nil {
			return nil, err
		}
		fecha = &f
	}
	var paqueteID *uuid.UUID
	if req.PaqueteID != nil {
		pid, err := uuid.Parse(*req.PaqueteID)
		if err != nil {
			return nil, apierror.InvalidInput("paquete_id inválido")
		}
		paqueteID = &pid
	}

	txErr := s.tx.Run(ctx, func(tx *gorm.DB) error {
		sesion, err := s.bloquearSesionTx(tx, id)
		if err != nil {
			return err
		}

		aplicarCamposGenerales(sesion, req, fecha)
		if !calc.IsValidTimeRange(sesion.HoraInicial, sesion.HoraFinal) {
			return ErrHorarioInvalido
		}

		var (
			porcentajes *calc.Porcentajes
			recalcular  bool
			precio      *decimal.Decimal
		)
		if paqueteID != nil && *paqueteID != sesion.PaqueteID {
			paquete, err := s.cargarPaqueteActivoTx(tx, *paqueteID)
			if err != nil {
				return err
			}
			sesion.PaqueteID = paquete.ID
			porcentajes = &calc.Porcentajes{A: paquete.PorcentajeA, B: paquete.PorcentajeB, C: paquete.PorcentajeC}
			precio = &paquete.Precio
			recalcular = true
		}
		if req.Anticipo != nil {
			sesion.Anticipo = calc.RoundMoney(*req.Anticipo)
			recalcular = true
			if precio == nil {
				paquete, err := s.paquetes.FindByIDTx(tx, sesion.PaqueteID)
				if err != nil {
					return ErrPaqueteNoEncontrado
				}
				precio = &paquete.Precio
			}
		}
		if precio != nil {
			sesion.Restante = restanteDe(*precio, sesion.Anticipo)
			if sesion.Restante.IsNegative() {
				log.Warn().
					Str("sesion_id", sesion.ID.String()).
					Str("restante", sesion.Restante.String()).
					Msg("sesion: anticipo mayor al precio del paquete, restante negativo")
			}
		}
		if req.Restante != nil {
			sesion.Restante = calc.RoundMoney(*req.Restante)
		}
		if req.MontoCaja != nil {
			sesion.MontoCaja = calc.RoundMoney(*req.MontoCaja)
			recalcular = true
		}

		if err := s.repo.UpdateTx(tx, sesion); err != nil {
			return err
		}
		if recalcular {
			if _, err := s.distribucion.RecalcularTx(tx, sesion, porcentajes); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("sesion_id", id.String()).Str("usuario_id", usuarioID.String()).Msg("sesion: actualizada")
	return s.ObtenerDetalle(ctx, id)
}

func aplicarCamposGenerales(s *model.Sesion, req dto.ActualizarSesionRequest, fecha *time.Time) {
	if fecha != nil {
		s.Fecha = *fecha
	}
	if req.HoraInicial != nil {
		s.HoraInicial = *req.HoraInicial
	}
	if req.HoraFinal != nil {
		s.HoraFinal = *req.HoraFinal
	}
	if req.NombreCliente != nil {
		s.NombreCliente = *req.NombreCliente
	}
	if req.CelularCliente != nil {
		s.CelularCliente = *req.CelularCliente
	}
	if req.Especificaciones != nil {
		s.Especificaciones = req.Especificaciones
	}
	if req.Comentario != nil {
		s.Comentario = req.Comentario
	}
	if req.Editado != nil {
		s.Editado = *req.Editado
	}
	if req.Entregado != nil {
		s.Entregado = *req.Entregado
	}
}

// ── AgregarLiquidacion ────────────────────────────────────────────────────────
// Liquidacion row + ingreso on the destination register, then the split is
// recomputed with the session's stored percentages so manual overrides survive.

func (s *sesionService) AgregarLiquidacion(ctx context.Context, usuarioID, id uuid.UUID, req dto.LiquidacionRequest) (*dto.LiquidacionResponse, error) {
	if !calc.IsPositiveAmount(req.Monto) {
		return nil, ErrMontoNoPositivo
	}
	if req.CajaDestino != model.TipoCajaBanco && req.CajaDestino != model.TipoCajaEfectivo {
		return nil, ErrCajaNoEncontrada
	}

	var liq model.Liquidacion
	var cajaID uuid.UUID
	txErr := s.tx.Run(ctx, func(tx *gorm.DB) error {
		sesion, err := s.bloquearSesionTx(tx, id)
		if err != nil {
			return err
		}
		caja, err := s.cajas.ResolverPorTipoTx(tx, req.CajaDestino)
		if err != nil {
			return err
		}
		cajaID = caja.ID

		liq = model.Liquidacion{
			SesionID:      sesion.ID,
			CajaDestinoID: caja.ID,
			Monto:         calc.RoundMoney(req.Monto),
			Activo:        true,
		}
		if err := s.repo.CreateLiquidacionTx(tx, &liq); err != nil {
			return err
		}
		if _, err := s.cajas.RegistrarMovimientoTx(tx, MovimientoInput{
			CajaID:    caja.ID,
			Tipo:      model.MovimientoIngreso,
			Concepto:  "Liquidación de sesión - " + sesion.NombreCliente,
			Monto:     liq.Monto,
			UsuarioID: usuarioID,
			SesionID:  &sesion.ID,
		}); err != nil {
			return err
		}
		_, err = s.distribucion.RecalcularTx(tx, sesion, nil)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sesion_id", id.String()).
		Str("caja_id", cajaID.String()).
		Str("monto", liq.Monto.String()).
		Msg("sesion: liquidación registrada")
	s.encolarAuditoria(ctx, []uuid.UUID{cajaID})

	return &dto.LiquidacionResponse{
		ID:            liq.ID.String(),
		SesionID:      liq.SesionID.String(),
		CajaDestinoID: liq.CajaDestinoID.String(),
		Monto:         liq.Monto,
		CreatedAt:     liq.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ── AgregarIngresoExtra / AgregarGasto ────────────────────────────────────────
// Neither posts a movement: they change the computed net, not any register.

func (s *sesionService) AgregarIngresoExtra(ctx context.Context, usuarioID, id uuid.UUID, req dto.ConceptoMontoRequest) (*dto.ConceptoMontoResponse, error) {
	if !calc.IsPositiveAmount(req.Monto) {
		return nil, ErrMontoNoPositivo
	}
	ing := model.IngresoExtra{Concepto: req.Concepto, Monto: calc.RoundMoney(req.Monto), Activo: true}
	err := s.conRecalculo(ctx, id, func(tx *gorm.DB, sesion *model.Sesion) error {
		ing.SesionID = sesion.ID
		return s.repo.CreateIngresoExtraTx(tx, &ing)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("sesion_id", id.String()).Str("monto", ing.Monto.String()).Msg("sesion: ingreso extra registrado")
	return conceptoMontoResponse(ing.ID, ing.SesionID, ing.Concepto, ing.Monto, ing.CreatedAt), nil
}

func (s *sesionService) AgregarGasto(ctx context.Context, usuarioID, id uuid.UUID, req dto.ConceptoMontoRequest) (*dto.ConceptoMontoResponse, error) {
	if !calc.IsPositiveAmount(req.Monto) {
		return nil, ErrMontoNoPositivo
	}
	g := model.Gasto{Concepto: req.Concepto, Monto: calc.RoundMoney(req.Monto), Activo: true}
	err := s.conRecalculo(ctx, id, func(tx *gorm.DB, sesion *model.Sesion) error {
		g.SesionID = sesion.ID
		return s.repo.CreateGastoTx(tx, &g)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("sesion_id", id.String()).Str("monto", g.Monto.String()).Msg("sesion: gasto registrado")
	return conceptoMontoResponse(g.ID, g.SesionID, g.Concepto, g.Monto, g.CreatedAt), nil
}

// conRecalculo locks the session, runs fn and recomputes the split with the stored percentages.
func (s *sesionService) conRecalculo(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, sesion *model.Sesion) error) error {
	return s.tx.Run(ctx, func(tx *gorm.DB) error {
		sesion, err := s.bloquearSesionTx(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, sesion); err != nil {
			return err
		}
		_, err = s.distribucion.RecalcularTx(tx, sesion, nil)
		return err
	})
}

// ── ActualizarPorcentajes ─────────────────────────────────────────────────────

func (s *sesionService) ActualizarPorcentajes(ctx context.Context, usuarioID, id uuid.UUID, req dto.PorcentajesRequest) (*dto.DistribucionResponse, error) {
	p := calc.Porcentajes{A: req.PorcentajeA, B: req.PorcentajeB, C: req.PorcentajeC}
	if !p.Valid() {
		return nil, ErrPorcentajesInvalidos
	}

	var dist *model.DistribucionSesion
	txErr := s.tx.Run(ctx, func(tx *gorm.DB) error {
		sesion, err := s.bloquearSesionTx(tx, id)
		if err != nil {
			return err
		}
		dist, err = s.distribucion.RecalcularTx(tx, sesion, &p)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sesion_id", id.String()).
		Str("usuario_id", usuarioID.String()).
		Str("porcentajes", p.A.String()+"/"+p.B.String()+"/"+p.C.String()).
		Msg("sesion: porcentajes actualizados")
	return distribucionToResponse(dist), nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// The only way into EstadoSesionRevertida:
//   1. lock the session, then every register it touched (ascending id)
//   2. compensate each active movement, newest first
//   3. deactivate liquidaciones, ingresos extra, gastos and the distribution
//   4. mark the session revertida / inactive

func (s *sesionService) Eliminar(ctx context.Context, usuarioID, id uuid.UUID) error {
	var tocadas []uuid.UUID
	var revertidos int
	txErr := s.tx.Run(ctx, func(tx *gorm.DB) error {
		tocadas, revertidos = nil, 0

		sesion, err := s.bloquearSesionTx(tx, id)
		if err != nil {
			return err
		}

		movs, err := s.cajas.MovimientosActivosDeSesionTx(tx, sesion.ID)
		if err != nil {
			return err
		}
		for _, m := range movs {
			tocadas = append(tocadas, m.CajaID)
		}
		if err := s.cajas.BloquearTx(tx, tocadas...); err != nil {
			return err
		}

		for i := len(movs) - 1; i >= 0; i-- {
			if _, err := s.cajas.RevertirMovimientoTx(tx, &movs[i], usuarioID); err != nil {
				return err
			}
			revertidos++
		}

		if err := s.repo.DesactivarHijosTx(tx, sesion.ID); err != nil {
			return err
		}
		if err := s.distribucion.DesactivarTx(tx, sesion.ID); err != nil {
			return err
		}
		sesion.Estado = model.EstadoSesionRevertida
		sesion.Activo = false
		return s.repo.UpdateTx(tx, sesion)
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("sesion_id", id.String()).
		Str("usuario_id", usuarioID.String()).
		Int("movimientos_revertidos", revertidos).
		Msg("sesion: revertida")
	s.encolarAuditoria(ctx, tocadas)
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *sesionService) ObtenerDetalle(ctx context.Context, id uuid.UUID) (*dto.SesionResponse, error) {
	sesion, err := s.repo.FindDetalle(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSesionNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	resp := sesionToResponse(sesion)

	liquidado := decimal.Zero
	for _, l := range sesion.Liquidaciones {
		liquidado = liquidado.Add(l.Monto)
		resp.Liquidaciones = append(resp.Liquidaciones, dto.LiquidacionResponse{
			ID:            l.ID.String(),
			SesionID:      l.SesionID.String(),
			CajaDestinoID: l.CajaDestinoID.String(),
			Monto:         l.Monto,
			CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		})
	}
	pendiente := calc.RoundMoney(sesion.Restante.Sub(liquidado))
	resp.Pendiente = &pendiente

	for _, i := range sesion.IngresosExtra {
		resp.IngresosExtra = append(resp.IngresosExtra, *conceptoMontoResponse(i.ID, i.SesionID, i.Concepto, i.Monto, i.CreatedAt))
	}
	for _, g := range sesion.Gastos {
		resp.Gastos = append(resp.Gastos, *conceptoMontoResponse(g.ID, g.SesionID, g.Concepto, g.Monto, g.CreatedAt))
	}
	resp.Distribucion = distribucionToResponse(sesion.Distribucion)
	return resp, nil
}

func (s *sesionService) Listar(ctx context.Context, filter dto.SesionFilter) (*dto.SesionListResponse, error) {
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rf := repository.SesionFilter{Cliente: filter.Cliente, Limit: filter.Limit, Offset: filter.Offset}
	if filter.Fecha != "" {
		f, err := parseFecha(filter.Fecha)
		if err != nil {
			return nil, err
		}
		rf.Fecha = &f
	}

	sesiones, total, err := s.repo.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SesionResponse, len(sesiones))
	for i := range sesiones {
		data[i] = *sesionToResponse(&sesiones[i])
	}
	return &dto.SesionListResponse{Data: data, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Proximas returns active sessions from today on, earliest first. Today is
// the calendar day in the studio's zone; dates are stored as UTC midnights.
func (s *sesionService) Proximas(ctx context.Context) ([]dto.SesionResponse, error) {
	now := s.now().In(s.loc)
	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sesiones, err := s.repo.ListDesde(ctx, hoy, maxProximas)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SesionResponse, len(sesiones))
	for i := range sesiones {
		resp[i] = *sesionToResponse(&sesiones[i])
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *sesionService) bloquearSesionTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error) {
	sesion, err := s.repo.LockTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSesionNoEncontrada
	}
	return sesion, err
}

func (s *sesionService) cargarPaqueteActivoTx(tx *gorm.DB, id uuid.UUID) (*model.Paquete, error) {
	paquete, err := s.paquetes.FindByIDTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaqueteNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	if !paquete.Activo {
		return nil, ErrPaqueteInactivo
	}
	return paquete, nil
}

// encolarAuditoria is best-effort: the unit of work is already committed.
func (s *sesionService) encolarAuditoria(ctx context.Context, cajaIDs []uuid.UUID) {
	if s.dispatcher == nil || len(cajaIDs) == 0 {
		return
	}
	if err := s.dispatcher.EnqueueAuditoria(ctx, cajaIDs); err != nil {
		log.Warn().Err(err).Msg("sesion: no se pudo encolar la auditoría de cajas")
	}
}

func restanteDe(precio, anticipo decimal.Decimal) decimal.Decimal {
	return calc.RoundMoney(precio.Sub(anticipo))
}

func parseFecha(s string) (time.Time, error) {
	f, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrFechaInvalida
	}
	return f, nil
}

func sesionToResponse(s *model.Sesion) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:               s.ID.String(),
		Fecha:            s.Fecha.Format("2006-01-02"),
		HoraInicial:      s.HoraInicial,
		HoraFinal:        s.HoraFinal,
		NombreCliente:    s.NombreCliente,
		CelularCliente:   s.CelularCliente,
		PaqueteID:        s.PaqueteID.String(),
		Especificaciones: s.Especificaciones,
		Comentario:       s.Comentario,
		Anticipo:         s.Anticipo,
		Restante:         s.Restante,
		MontoCaja:        s.MontoCaja,
		Editado:          s.Editado,
		Entregado:        s.Entregado,
		Estado:           s.Estado,
		UsuarioID:        s.UsuarioID.String(),
	}
	if s.Paquete != nil {
		p := paqueteToResponse(s.Paquete)
		resp.Paquete = &p
	}
	return resp
}

func conceptoMontoResponse(id, sesionID uuid.UUID, concepto string, monto decimal.Decimal, createdAt time.Time) *dto.ConceptoMontoResponse {
	return &dto.ConceptoMontoResponse{
		ID:        id.String(),
		SesionID:  sesionID.String(),
		Concepto:  concepto,
		Monto:     monto,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
}
