package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvAndDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "un_secreto_de_al_menos_32_caracteres")
	t.Setenv("TX_MAX_WAIT", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "un_secreto_de_al_menos_32_caracteres", cfg.JWTSecret)
	assert.Equal(t, "2s", cfg.TxMaxWait.String())
	assert.Equal(t, 3, cfg.TxMaxRetries)
	assert.Equal(t, [3]string{"Socio A", "Socio B", "Socio C"}, cfg.Beneficiarios())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins())
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "un_secreto_de_al_menos_32_caracteres")
	t.Setenv("TIMEZONE", "UTC")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.Location)

	t.Setenv("TIMEZONE", "Marte/Olympus")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "corto")
	_, err := Load()
	assert.Error(t, err)
}
