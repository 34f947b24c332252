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
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaqueteService manages the catalogue of service packages.
// Changing a package never touches the sessions already booked with it.
type PaqueteService interface {
	Crear(ctx context.Context, req dto.CrearPaqueteRequest) (*dto.PaqueteResponse, error)
	Listar(ctx context.Context) ([]dto.PaqueteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PaqueteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPaqueteRequest) (*dto.PaqueteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type paqueteService struct {
	repo repository.PaqueteRepository
}

func NewPaqueteService(repo repository.PaqueteRepository) PaqueteService {
	return &paqueteService{repo: repo}
}

func paqueteToResponse(p *model.Paquete) dto.PaqueteResponse {
	return dto.PaqueteResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		PorcentajeA: p.PorcentajeA,
		PorcentajeB: p.PorcentajeB,
		PorcentajeC: p.PorcentajeC,
		Activo:      p.Activo,
	}
}

func (s *paqueteService) Crear(ctx context.Context, req dto.CrearPaqueteRequest) (*dto.PaqueteResponse, error) {
	if !calc.IsValidAmount(req.Precio) {
		return nil, ErrMontoInvalido
	}
	p := calc.Porcentajes{A: req.PorcentajeA, B: req.PorcentajeB, C: req.PorcentajeC}
	if !p.Valid() {
		return nil, ErrPorcentajesInvalidos
	}

	paquete := &model.Paquete{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      calc.RoundMoney(req.Precio),
		PorcentajeA: p.A,
		PorcentajeB: p.B,
		PorcentajeC: p.C,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, paquete); err != nil {
		return nil, err
	}
	log.Info().Str("paquete_id", paquete.ID.String()).Str("nombre", paquete.Nombre).Msg("paquete: creado")
	resp := paqueteToResponse(paquete)
	return &resp, nil
}

func (s *paqueteService) Listar(ctx context.Context) ([]dto.PaqueteResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.PaqueteResponse, 0, len(list))
	for i := range list {
		result = append(result, paqueteToResponse(&list[i]))
	}
	return result, nil
}

func (s *paqueteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PaqueteResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := paqueteToResponse(p)
	return &resp, nil
}

func (s *paqueteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPaqueteRequest) (*dto.PaqueteResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Activo {
		return nil, ErrPaqueteInactivo
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Precio != nil {
		if !calc.IsValidAmount(*req.Precio) {
			return nil, ErrMontoInvalido
		}
		p.Precio = calc.RoundMoney(*req.Precio)
	}

	enviados := 0
	for _, v := range []*decimal.Decimal{req.PorcentajeA, req.PorcentajeB, req.PorcentajeC} {
		if v != nil {
			enviados++
		}
	}
	switch enviados {
	case 0:
	case 3:
		nuevos := calc.Porcentajes{A: *req.PorcentajeA, B: *req.PorcentajeB, C: *req.PorcentajeC}
		if !nuevos.Valid() {
			return nil, ErrPorcentajesInvalidos
		}
		p.PorcentajeA, p.PorcentajeB, p.PorcentajeC = nuevos.A, nuevos.B, nuevos.C
	default:
		return nil, apierror.InvalidInput("Los tres porcentajes deben enviarse juntos")
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := paqueteToResponse(p)
	return &resp, nil
}

func (s *paqueteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPaqueteNoEncontrado
	}
	return err
}

func (s *paqueteService) buscar(ctx context.Context, id uuid.UUID) (*model.Paquete, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaqueteNoEncontrado
	}
	return p, err
}
