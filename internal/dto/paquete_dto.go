package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPaqueteRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=1,max=100"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	PorcentajeA decimal.Decimal `json:"porcentaje_a" validate:"min=0,max=100"`
	PorcentajeB decimal.Decimal `json:"porcentaje_b" validate:"min=0,max=100"`
	PorcentajeC decimal.Decimal `json:"porcentaje_c" validate:"min=0,max=100"`
}

// ActualizarPaqueteRequest is a partial update; nil fields are left unchanged.
// The three percentages travel together or not at all.
type ActualizarPaqueteRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=1,max=100"`
	Descripcion *string          `json:"descripcion"`
	Precio      *decimal.Decimal `json:"precio"`
	PorcentajeA *decimal.Decimal `json:"porcentaje_a"`
	PorcentajeB *decimal.Decimal `json:"porcentaje_b"`
	PorcentajeC *decimal.Decimal `json:"porcentaje_c"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaqueteResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	PorcentajeA decimal.Decimal `json:"porcentaje_a"`
	PorcentajeB decimal.Decimal `json:"porcentaje_b"`
	PorcentajeC decimal.Decimal `json:"porcentaje_c"`
	Activo      bool            `json:"activo"`
}
