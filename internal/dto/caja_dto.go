package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// MovimientoFilter is bound from query string of GET /v1/cajas/:id/movimientos.
type MovimientoFilter struct {
	Limit  int `form:"limit,default=50" validate:"min=1,max=200"`
	Offset int `form:"offset,default=0" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	Tipo         string          `json:"tipo"` // banco | efectivo | ahorro
	SaldoInicial decimal.Decimal `json:"saldo_inicial"`
	Saldo        decimal.Decimal `json:"saldo"`
}

type MovimientoResponse struct {
	ID            string          `json:"id"`
	CajaID        string          `json:"caja_id"`
	Tipo          string          `json:"tipo"` // ingreso | retiro
	Concepto      string          `json:"concepto"`
	Monto         decimal.Decimal `json:"monto"`
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo    decimal.Decimal `json:"saldo_nuevo"`
	SesionID      *string         `json:"sesion_id"`
	ReversaDeID   *string         `json:"reversa_de_id,omitempty"`
	UsuarioID     string          `json:"usuario_id"`
	Secuencia     int64           `json:"secuencia"`
	CreatedAt     string          `json:"created_at"`
}

type MovimientoListResponse struct {
	Data   []MovimientoResponse `json:"data"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// AuditoriaResponse is the result of replaying a register's movement history.
type AuditoriaResponse struct {
	CajaID        string          `json:"caja_id"`
	Saldo         decimal.Decimal `json:"saldo"`
	SaldoEsperado decimal.Decimal `json:"saldo_esperado"`
	Movimientos   int             `json:"movimientos"`
	Consistente   bool            `json:"consistente"`
	Discrepancias []string        `json:"discrepancias"`
}
