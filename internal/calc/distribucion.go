package calc

import "github.com/shopspring/decimal"

// Porcentajes is a percentage triple for the three beneficiaries.
type Porcentajes struct {
	A, B, C decimal.Decimal
}

func (p Porcentajes) Valid() bool { return ValidPercentages(p.A, p.B, p.C) }

// Reparto is the result of splitting a net amount.
type Reparto struct {
	A, B, C decimal.Decimal
}

// Split divides net among three shares. A and B are rounded independently and C
// takes net-A-B, so A+B+C equals the rounded net to the cent. net may be negative.
func Split(net decimal.Decimal, p Porcentajes) (Reparto, error) {
	if !p.Valid() {
		return Reparto{}, ErrPorcentajesInvalidos
	}
	net = RoundMoney(net)
	a := RoundMoney(net.Mul(p.A).Div(cien))
	b := RoundMoney(net.Mul(p.B).Div(cien))
	return Reparto{A: a, B: b, C: net.Sub(a).Sub(b)}, nil
}

// Totales are the cached figures a distribution is derived from.
type Totales struct {
	Ingresos  decimal.Decimal
	Gastos    decimal.Decimal
	MontoCaja decimal.Decimal
	Neto      decimal.Decimal
}

// SumMoney adds the amounts and rounds the result.
func SumMoney(montos []decimal.Decimal) decimal.Decimal {
	return RoundMoney(decimal.Sum(decimal.Zero, montos...))
}

// CalcularTotales computes income, expense and net for a session:
//
//	ingresos = anticipo + Σ liquidaciones + Σ ingresos extra
//	gastos   = Σ gastos
//	neto     = ingresos - gastos - montoCaja
//
// Only active child rows must be passed in.
func CalcularTotales(anticipo, montoCaja decimal.Decimal, liquidaciones, ingresosExtra, gastos []decimal.Decimal) Totales {
	ingresos := RoundMoney(RoundMoney(anticipo).Add(SumMoney(liquidaciones)).Add(SumMoney(ingresosExtra)))
	totalGastos := SumMoney(gastos)
	caja := RoundMoney(montoCaja)
	return Totales{
		Ingresos:  ingresos,
		Gastos:    totalGastos,
		MontoCaja: caja,
		Neto:      RoundMoney(ingresos.Sub(totalGastos).Sub(caja)),
	}
}
