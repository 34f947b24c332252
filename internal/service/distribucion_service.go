package service

import (
	"context"
	"errors"

	"estudio/internal/apierror"
	"estudio/internal/calc"
	"estudio/internal/dto"
	"estudio/internal/model"
	"estudio/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DistribucionService interface {
	// RecalcularTx recomputes a session's totals and split and persists them.
	// With p == nil the stored percentages are kept; a session without a
	// distribution yet falls back to its package defaults.
	RecalcularTx(tx *gorm.DB, sesion *model.Sesion, p *calc.Porcentajes) (*model.DistribucionSesion, error)
	DesactivarTx(tx *gorm.DB, sesionID uuid.UUID) error
	Reporte(ctx context.Context, filter dto.ReporteFilter) (*dto.ReporteDistribucionResponse, error)
}

type distribucionService struct {
	repo          repository.DistribucionRepository
	sesiones      repository.SesionRepository
	paquetes      repository.PaqueteRepository
	beneficiarios [3]string
}

func NewDistribucionService(
	repo repository.DistribucionRepository,
	sesiones repository.SesionRepository,
	paquetes repository.PaqueteRepository,
	beneficiarios [3]string,
) DistribucionService {
	return &distribucionService{repo: repo, sesiones: sesiones, paquetes: paquetes, beneficiarios: beneficiarios}
}

func (s *distribucionService) RecalcularTx(tx *gorm.DB, sesion *model.Sesion, p *calc.Porcentajes) (*model.DistribucionSesion, error) {
	dist, err := s.repo.FindBySesionTx(tx, sesion.ID)
	existe := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !existe {
		dist = &model.DistribucionSesion{SesionID: sesion.ID, Activo: true}
	}

	if p == nil {
		if existe {
			p = &calc.Porcentajes{A: dist.PorcentajeA, B: dist.PorcentajeB, C: dist.PorcentajeC}
		} else {
			paquete, err := s.paquetes.FindByIDTx(tx, sesion.PaqueteID)
			if err != nil {
				return nil, ErrPaqueteNoEncontrado
			}
			p = &calc.Porcentajes{A: paquete.PorcentajeA, B: paquete.PorcentajeB, C: paquete.PorcentajeC}
		}
	}

	montos, err := s.sesiones.MontosActivosTx(tx, sesion.ID)
	if err != nil {
		return nil, err
	}
	tot := calc.CalcularTotales(sesion.Anticipo, sesion.MontoCaja, montos.Liquidaciones, montos.IngresosExtra, montos.Gastos)

	rep, err := calc.Split(tot.Neto, *p)
	if err != nil {
		return nil, err
	}

	dist.PorcentajeA, dist.PorcentajeB, dist.PorcentajeC = p.A, p.B, p.C
	dist.MontoA, dist.MontoB, dist.MontoC = rep.A, rep.B, rep.C
	dist.IngresosTotales = tot.Ingresos
	dist.GastosTotales = tot.Gastos
	dist.Neto = tot.Neto
	if err := s.repo.SaveTx(tx, dist); err != nil {
		return nil, err
	}
	return dist, nil
}

func (s *distribucionService) DesactivarTx(tx *gorm.DB, sesionID uuid.UUID) error {
	return s.repo.DesactivarTx(tx, sesionID)
}

// ── Reporte ───────────────────────────────────────────────────────────────────
// Sums the cached distribution of every active session dated in the range.

func (s *distribucionService) Reporte(ctx context.Context, filter dto.ReporteFilter) (*dto.ReporteDistribucionResponse, error) {
	desde, err := parseFecha(filter.FechaInicio)
	if err != nil {
		return nil, err
	}
	hasta, err := parseFecha(filter.FechaFin)
	if err != nil {
		return nil, err
	}
	if hasta.Before(desde) {
		return nil, apierror.InvalidInput("fecha_fin debe ser posterior o igual a fecha_inicio")
	}

	sesiones, err := s.sesiones.ListEnRango(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}

	rep := &dto.ReporteDistribucionResponse{
		FechaInicio: filter.FechaInicio,
		FechaFin:    filter.FechaFin,
		Sesiones:    len(sesiones),
	}
	var a, b, c decimal.Decimal
	for _, ses := range sesiones {
		rep.TotalAnticipos = rep.TotalAnticipos.Add(ses.Anticipo)
		rep.TotalCajas = rep.TotalCajas.Add(ses.MontoCaja)
		if d := ses.Distribucion; d != nil {
			rep.TotalIngresos = rep.TotalIngresos.Add(d.IngresosTotales)
			rep.TotalGastos = rep.TotalGastos.Add(d.GastosTotales)
			rep.TotalNeto = rep.TotalNeto.Add(d.Neto)
			a, b, c = a.Add(d.MontoA), b.Add(d.MontoB), c.Add(d.MontoC)
		}
	}
	for i, monto := range []decimal.Decimal{a, b, c} {
		rep.Distribucion = append(rep.Distribucion, dto.ParticipacionResponse{
			Beneficiario: s.beneficiarios[i],
			Monto:        calc.RoundMoney(monto),
		})
	}
	return rep, nil
}

func distribucionToResponse(d *model.DistribucionSesion) *dto.DistribucionResponse {
	if d == nil {
		return nil
	}
	return &dto.DistribucionResponse{
		PorcentajeA:     d.PorcentajeA,
		PorcentajeB:     d.PorcentajeB,
		PorcentajeC:     d.PorcentajeC,
		MontoA:          d.MontoA,
		MontoB:          d.MontoB,
		MontoC:          d.MontoC,
		IngresosTotales: d.IngresosTotales,
		GastosTotales:   d.GastosTotales,
		Neto:            d.Neto,
	}
}
