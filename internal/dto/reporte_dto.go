package dto

import "github.com/shopspring/decimal"

// ReporteFilter is bound from query string of GET /v1/sesiones/reporte/distribucion.
type ReporteFilter struct {
	FechaInicio string `form:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	FechaFin    string `form:"fecha_fin"    validate:"required,datetime=2006-01-02"`
}

type ParticipacionResponse struct {
	Beneficiario string          `json:"beneficiario"`
	Monto        decimal.Decimal `json:"monto"`
}

// ReporteDistribucionResponse aggregates the active sessions of a date range.
type ReporteDistribucionResponse struct {
	FechaInicio    string                  `json:"fecha_inicio"`
	FechaFin       string                  `json:"fecha_fin"`
	Sesiones       int                     `json:"sesiones"`
	TotalAnticipos decimal.Decimal         `json:"total_anticipos"`
	TotalCajas     decimal.Decimal         `json:"total_cajas"`
	TotalIngresos  decimal.Decimal         `json:"total_ingresos"`
	TotalGastos    decimal.Decimal         `json:"total_gastos"`
	TotalNeto      decimal.Decimal         `json:"total_neto"`
	Distribucion   []ParticipacionResponse `json:"distribucion"`
}
