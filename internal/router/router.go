package router

import (
	"time"

	"estudio/internal/config"
	"estudio/internal/handler"
	"estudio/internal/middleware"
	"estudio/internal/model"
	"estudio/internal/repository"
	"estudio/internal/service"
	"estudio/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer shared by the HTTP routes and the background workers.
type Services struct {
	Auth         service.AuthService
	Caja         service.CajaService
	Paquete      service.PaqueteService
	Distribucion service.DistribucionService
	Sesion       service.SesionService
}

// NewServices wires repositories and services.
// Dependency graph: Service ← Repository ← DB (TxRunner) / Redis (Dispatcher)
func NewServices(cfg *config.Config, db *gorm.DB, dispatcher *worker.Dispatcher) *Services {
	tx := repository.NewTxRunner(db, repository.TxOptions{
		MaxWait:    cfg.TxMaxWait,
		Timeout:    cfg.TxTimeout,
		MaxRetries: cfg.TxMaxRetries,
	})

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	paqueteRepo := repository.NewPaqueteRepository(db)
	sesionRepo := repository.NewSesionRepository(db)
	distribucionRepo := repository.NewDistribucionRepository()

	// ── Services ─────────────────────────────────────────────────────────────
	cajaSvc := service.NewCajaService(cajaRepo, tx)
	distribucionSvc := service.NewDistribucionService(distribucionRepo, sesionRepo, paqueteRepo, cfg.Beneficiarios())

	return &Services{
		Auth:         service.NewAuthService(usuarioRepo, cfg),
		Caja:         cajaSvc,
		Paquete:      service.NewPaqueteService(paqueteRepo),
		Distribucion: distribucionSvc,
		Sesion:       service.NewSesionService(tx, sesionRepo, paqueteRepo, cajaSvc, distribucionSvc, dispatcher,
			service.WithZonaHoraria(cfg.Location)),
	}
}

// New returns a configured Gin engine over svcs.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, svcs *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	usuariosH := handler.NewUsuariosHandler(svcs.Auth)
	cajaH := handler.NewCajaHandler(svcs.Caja, rdb)
	paquetesH := handler.NewPaquetesHandler(svcs.Paquete)
	sesionesH := handler.NewSesionesHandler(svcs.Sesion, svcs.Distribucion, cfg.ReportStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, dispatcher))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Both roles operate sessions; catalogue, users and
	// ledger audits are administrator-only.
	todos := middleware.RequireRole(model.RolAdministrador, model.RolOperador)
	admin := middleware.RequireRole(model.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/auth/me", authH.Me)

		ses := v1.Group("/sesiones", todos)
		{
			ses.POST("", sesionesH.Crear)
			ses.GET("", sesionesH.Listar)
			ses.GET("/proximas", sesionesH.Proximas)
			ses.GET("/reporte/distribucion", sesionesH.ReporteDistribucion)
			ses.GET("/reporte/distribucion.pdf", sesionesH.ReporteDistribucionPDF)
			ses.GET("/:id", sesionesH.Obtener)
			ses.PUT("/:id", sesionesH.Actualizar)
			ses.DELETE("/:id", sesionesH.Eliminar)
			ses.POST("/:id/liquidaciones", sesionesH.AgregarLiquidacion)
			ses.POST("/:id/ingresos-extra", sesionesH.AgregarIngresoExtra)
			ses.POST("/:id/gastos", sesionesH.AgregarGasto)
			ses.PUT("/:id/distribucion", sesionesH.ActualizarPorcentajes)
		}

		v1.GET("/paquetes", todos, paquetesH.Listar)
		v1.GET("/paquetes/:id", todos, paquetesH.Obtener)
		paq := v1.Group("/paquetes", admin)
		{
			paq.POST("", paquetesH.Crear)
			paq.PUT("/:id", paquetesH.Actualizar)
			paq.DELETE("/:id", paquetesH.Desactivar)
		}

		cajas := v1.Group("/cajas", todos)
		{
			cajas.GET("", cajaH.Listar)
			cajas.GET("/:id/movimientos", cajaH.Movimientos)
			cajas.GET("/:id/auditoria", admin, cajaH.Auditoria)
		}
		v1.GET("/auditorias/pendientes", admin, cajaH.AuditoriasPendientes)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.GET("/:id", usuariosH.Obtener)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
