// Package calc holds the pure money arithmetic shared by the ledger and the
// distribution engine: rounding, amount/percentage/time validation, the
// three-way split and the per-session totals.
//
// Every monetary value that enters or leaves the ledger goes through RoundMoney.
package calc

import (
	"time"

	"estudio/internal/apierror"

	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the number of decimal places kept for monetary values.
	MoneyPlaces = 2
	// PercentPlaces matches the decimal(5,2) percentage columns.
	PercentPlaces = 2
)

var (
	cien                 = decimal.NewFromInt(100)
	toleranciaPorcentaje = decimal.New(1, -2) // 0.01
)

// ErrPorcentajesInvalidos is returned when a percentage triple does not add up to 100.
var ErrPorcentajesInvalidos = apierror.InvalidInput("Los porcentajes deben estar entre 0 y 100, tener hasta dos decimales y sumar 100%")

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// IsValidAmount reports whether d is non-negative and carries at most two decimals.
func IsValidAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(MoneyPlaces))
}

// IsPositiveAmount is IsValidAmount restricted to amounts strictly greater than zero.
func IsPositiveAmount(d decimal.Decimal) bool {
	return IsValidAmount(d) && d.IsPositive()
}

// PercentagesSumTo100 reports whether |p1+p2+p3-100| < 0.01.
func PercentagesSumTo100(p1, p2, p3 decimal.Decimal) bool {
	return p1.Add(p2).Add(p3).Sub(cien).Abs().LessThan(toleranciaPorcentaje)
}

// ValidPercentages additionally requires every share to lie in [0, 100]
// with at most PercentPlaces decimals, so a stored triple reads back exactly
// as it was validated.
func ValidPercentages(p1, p2, p3 decimal.Decimal) bool {
	for _, p := range []decimal.Decimal{p1, p2, p3} {
		if p.IsNegative() || p.GreaterThan(cien) || !p.Equal(p.Round(PercentPlaces)) {
			return false
		}
	}
	return PercentagesSumTo100(p1, p2, p3)
}

// ParseHora parses a time-of-day in "HH:MM" (or "HH:MM:SS") form.
func ParseHora(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

// IsValidTimeRange reports whether end is strictly after start on the same day.
// Unparseable values are never a valid range.
func IsValidTimeRange(start, end string) bool {
	s, err := ParseHora(start)
	if err != nil {
		return false
	}
	e, err := ParseHora(end)
	if err != nil {
		return false
	}
	return e.After(s)
}
