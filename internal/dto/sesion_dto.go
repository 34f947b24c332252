package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SesionFilter is bound from query string of GET /v1/sesiones.
type SesionFilter struct {
	Fecha   string `form:"fecha"   validate:"omitempty,datetime=2006-01-02"`
	Cliente string `form:"cliente" validate:"omitempty,max=150"` // substring match on nombre_cliente
	Limit   int    `form:"limit,default=50"  validate:"min=1,max=200"`
	Offset  int    `form:"offset,default=0"  validate:"min=0"`
}

type SesionListResponse struct {
	Data   []SesionResponse `json:"data"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearSesionRequest struct {
	Fecha            string          `json:"fecha"           validate:"required,datetime=2006-01-02"`
	HoraInicial      string          `json:"hora_inicial"    validate:"required"`
	HoraFinal        string          `json:"hora_final"      validate:"required"`
	NombreCliente    string          `json:"nombre_cliente"  validate:"required,min=1,max=150"`
	CelularCliente   string          `json:"celular_cliente" validate:"omitempty,max=20"`
	PaqueteID        string          `json:"paquete_id"      validate:"required,uuid"`
	Especificaciones *string         `json:"especificaciones"`
	Comentario       *string         `json:"comentario"`
	Anticipo         decimal.Decimal `json:"anticipo"        validate:"min=0"`
	MontoCaja        decimal.Decimal `json:"monto_caja"      validate:"min=0"`
}

// ActualizarSesionRequest carries both the general fields and the financial
// ones (anticipo, monto_caja, paquete_id, restante). Nil fields are left unchanged.
type ActualizarSesionRequest struct {
	Fecha            *string          `json:"fecha"           validate:"omitempty,datetime=2006-01-02"`
	HoraInicial      *string          `json:"hora_inicial"`
	HoraFinal        *string          `json:"hora_final"`
	NombreCliente    *string          `json:"nombre_cliente"  validate:"omitempty,min=1,max=150"`
	CelularCliente   *string          `json:"celular_cliente" validate:"omitempty,max=20"`
	PaqueteID        *string          `json:"paquete_id"      validate:"omitempty,uuid"`
	Especificaciones *string          `json:"especificaciones"`
	Comentario       *string          `json:"comentario"`
	Editado          *bool            `json:"editado"`
	Entregado        *bool            `json:"entregado"`
	Anticipo         *decimal.Decimal `json:"anticipo"`
	MontoCaja        *decimal.Decimal `json:"monto_caja"`
	Restante         *decimal.Decimal `json:"restante"`
}

type LiquidacionRequest struct {
	Monto       decimal.Decimal `json:"monto"        validate:"required,gt=0"`
	CajaDestino string          `json:"caja_destino" validate:"required,oneof=banco efectivo"`
}

// ConceptoMontoRequest is the body of both extra-income and expense endpoints.
type ConceptoMontoRequest struct {
	Concepto string          `json:"concepto" validate:"required,min=1,max=255"`
	Monto    decimal.Decimal `json:"monto"    validate:"required,gt=0"`
}

type PorcentajesRequest struct {
	PorcentajeA decimal.Decimal `json:"porcentaje_a" validate:"min=0,max=100"`
	PorcentajeB decimal.Decimal `json:"porcentaje_b" validate:"min=0,max=100"`
	PorcentajeC decimal.Decimal `json:"porcentaje_c" validate:"min=0,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DistribucionResponse struct {
	PorcentajeA     decimal.Decimal `json:"porcentaje_a"`
	PorcentajeB     decimal.Decimal `json:"porcentaje_b"`
	PorcentajeC     decimal.Decimal `json:"porcentaje_c"`
	MontoA          decimal.Decimal `json:"monto_a"`
	MontoB          decimal.Decimal `json:"monto_b"`
	MontoC          decimal.Decimal `json:"monto_c"`
	IngresosTotales decimal.Decimal `json:"ingresos_totales"`
	GastosTotales   decimal.Decimal `json:"gastos_totales"`
	Neto            decimal.Decimal `json:"neto"`
}

type LiquidacionResponse struct {
	ID            string          `json:"id"`
	SesionID      string          `json:"sesion_id"`
	CajaDestinoID string          `json:"caja_destino_id"`
	Monto         decimal.Decimal `json:"monto"`
	CreatedAt     string          `json:"created_at"`
}

// ConceptoMontoResponse represents either an ingreso extra or a gasto.
type ConceptoMontoResponse struct {
	ID        string          `json:"id"`
	SesionID  string          `json:"sesion_id"`
	Concepto  string          `json:"concepto"`
	Monto     decimal.Decimal `json:"monto"`
	CreatedAt string          `json:"created_at"`
}

type SesionResponse struct {
	ID               string                  `json:"id"`
	Fecha            string                  `json:"fecha"`
	HoraInicial      string                  `json:"hora_inicial"`
	HoraFinal        string                  `json:"hora_final"`
	NombreCliente    string                  `json:"nombre_cliente"`
	CelularCliente   string                  `json:"celular_cliente"`
	PaqueteID        string                  `json:"paquete_id"`
	Paquete          *PaqueteResponse        `json:"paquete,omitempty"`
	Especificaciones *string                 `json:"especificaciones"`
	Comentario       *string                 `json:"comentario"`
	Anticipo         decimal.Decimal         `json:"anticipo"`
	Restante         decimal.Decimal         `json:"restante"`
	Pendiente        *decimal.Decimal        `json:"pendiente,omitempty"` // restante − Σ liquidaciones, detail only
	MontoCaja        decimal.Decimal         `json:"monto_caja"`
	Editado          bool                    `json:"editado"`
	Entregado        bool                    `json:"entregado"`
	Estado           string                  `json:"estado"`
	UsuarioID        string                  `json:"usuario_id"`
	Liquidaciones    []LiquidacionResponse   `json:"liquidaciones,omitempty"`
	IngresosExtra    []ConceptoMontoResponse `json:"ingresos_extra,omitempty"`
	Gastos           []ConceptoMontoResponse `json:"gastos,omitempty"`
	Distribucion     *DistribucionResponse   `json:"distribucion,omitempty"`
}
