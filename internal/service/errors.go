package service

import (
	"estudio/internal/apierror"
	"estudio/internal/calc"
)

// Domain sentinels. Compare with errors.Is; a sentinel returned with extra
// context still matches because apierror.Error compares kind and reason.
var (
	ErrPaqueteNoEncontrado  = apierror.NotFound("Paquete no encontrado")
	ErrPaqueteInactivo      = apierror.NotFound("Paquete inactivo")
	ErrSesionNoEncontrada   = apierror.NotFound("Sesión no encontrada o inactiva")
	ErrCajaNoEncontrada     = apierror.NotFound("Caja no encontrada o inactiva")
	ErrUsuarioNoEncontrado  = apierror.NotFound("Usuario no encontrado")
	ErrSaldoInsuficiente    = apierror.InsufficientBalance("Saldo insuficiente")
	ErrHorarioInvalido      = apierror.InvalidInput("La hora final debe ser mayor a la hora inicial")
	ErrMontoInvalido        = apierror.InvalidInput("Los montos deben ser válidos (>= 0, máximo 2 decimales)")
	ErrMontoNoPositivo      = apierror.InvalidInput("El monto debe ser mayor a 0 y válido")
	ErrFechaInvalida        = apierror.InvalidInput("Fecha inválida, se espera YYYY-MM-DD")
	ErrRestanteManual       = apierror.InvalidInput("restante no puede enviarse junto con anticipo o paquete_id")
	ErrPorcentajesInvalidos = calc.ErrPorcentajesInvalidos
)
