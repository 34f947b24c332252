package service_test

import (
	"context"
	"testing"

	"estudio/internal/config"
	"estudio/internal/dto"
	"estudio/internal/model"
	"estudio/internal/repository"
	"estudio/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newAuthService(t *testing.T) service.AuthService {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 24}
	return service.NewAuthService(repository.NewUsuarioRepository(newTestDB(t)), cfg)
}

func crearUsuario(t *testing.T, svc service.AuthService, username, rol string) *dto.UsuarioResponse {
	t.Helper()
	u, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: username, Nombre: "Usuario " + username, Password: "secreto123", Rol: rol,
	})
	require.NoError(t, err)
	return u
}

func TestLogin_IssuesTokensWithRoleClaims(t *testing.T) {
	svc := newAuthService(t)
	u := crearUsuario(t, svc, "recepcion", model.RolOperador)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "recepcion", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, u.ID, resp.User.ID)

	tok, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, u.ID, claims["user_id"])
	assert.Equal(t, model.RolOperador, claims["rol"])
	assert.Equal(t, "access", claims["typ"])

	require.NotNil(t, resp.User.UltimoAcceso)
	todos, err := svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.NotNil(t, todos[0].UltimoAcceso, "access time persisted")
}

func TestLogin_UsernameIsCaseInsensitive(t *testing.T) {
	svc := newAuthService(t)
	crearUsuario(t, svc, "Recepcion", model.RolOperador)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "RECEPCION", Password: "secreto123"})
	assert.NoError(t, err)

	_, err = svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "recepcion", Nombre: "Otra", Password: "secreto123", Rol: model.RolOperador,
	})
	assert.Error(t, err, "usernames are unique regardless of case")
}

func TestLogin_RejectsWrongPasswordAndInactiveUser(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	u := crearUsuario(t, svc, "admin", model.RolAdministrador)

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "incorrecta"})
	assert.Error(t, err)

	require.NoError(t, svc.DesactivarUsuario(ctx, uuid.MustParse(u.ID)))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "secreto123"})
	assert.Error(t, err)

	require.NoError(t, svc.ReactivarUsuario(ctx, uuid.MustParse(u.ID)))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "secreto123"})
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	crearUsuario(t, svc, "admin", model.RolAdministrador)

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "secreto123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.Error(t, err, "an access token cannot be used to refresh")

	_, err = svc.Refresh(ctx, "no.es.jwt")
	assert.Error(t, err)
}

func TestDesactivarUsuarioInexistente(t *testing.T) {
	svc := newAuthService(t)
	err := svc.DesactivarUsuario(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrUsuarioNoEncontrado)
}

func TestObtenerUsuario(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	u := crearUsuario(t, svc, "ana", model.RolOperador)

	got, err := svc.ObtenerUsuario(ctx, uuid.MustParse(u.ID))
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.True(t, got.Activo)

	_, err = svc.ObtenerUsuario(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUsuarioNoEncontrado)
}

func TestCrearUsuario_DuplicateUsername(t *testing.T) {
	svc := newAuthService(t)
	crearUsuario(t, svc, "admin", model.RolAdministrador)

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "admin", Nombre: "Otro", Password: "secreto123", Rol: model.RolOperador,
	})
	assert.Error(t, err)
}

func TestListarYActualizarUsuarios(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	a := crearUsuario(t, svc, "ana", model.RolOperador)
	b := crearUsuario(t, svc, "beto", model.RolOperador)
	require.NoError(t, svc.DesactivarUsuario(ctx, uuid.MustParse(b.ID)))

	activos, err := svc.ListarUsuarios(ctx, false)
	require.NoError(t, err)
	assert.Len(t, activos, 1)
	todos, err := svc.ListarUsuarios(ctx, true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	upd, err := svc.ActualizarUsuario(ctx, uuid.MustParse(a.ID), dto.ActualizarUsuarioRequest{Rol: model.RolAdministrador, Password: "nuevaClave1"})
	require.NoError(t, err)
	assert.Equal(t, model.RolAdministrador, upd.Rol)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "nuevaClave1"})
	assert.NoError(t, err)

	_, err = svc.ActualizarUsuario(ctx, uuid.New(), dto.ActualizarUsuarioRequest{Nombre: "Nadie"})
	assert.Error(t, err)
}
