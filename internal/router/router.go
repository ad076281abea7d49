package router

import (
	"time"

	"cajaledger/internal/config"
	"cajaledger/internal/handler"
	"cajaledger/internal/middleware"
	"cajaledger/internal/repository"
	"cajaledger/internal/service"
	"cajaledger/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, catalogoSvc service.CatalogoService, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	cuentasRepo := repository.NewCuentasRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo, cajaRepo, cfg)
	cajaSvc := service.NewCajaService(cajaRepo, auditoriaRepo, cuentasRepo, usuarioRepo, catalogoSvc, auditoriaSvc, dispatcher)
	cuentasSvc := service.NewCuentasService(cuentasRepo, cajaRepo, cajaSvc)
	nominaSvc := service.NewNominaService(cajaRepo, cajaSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, rdb)
	cuentasH := handler.NewCuentasHandler(cuentasSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)
	nominaH := handler.NewNominaHandler(nominaSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Abrir)
			caja.POST("/operacion", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.RegistrarOperacion)
			caja.POST("/cierre", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.SolicitarCierre)
			caja.GET("/:id/reporte", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.ObtenerReporte)
			caja.GET("/activa", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.GetActiva)
			caja.GET("/historial", middleware.RequireRole("supervisor", "administrador"), cajaH.Historial)
			// Audit policy override — supervisors reopen blocked sessions through
			// this lever too (switching the register to flexible and re-closing)
			caja.PUT("/:id/config", middleware.RequireRole("supervisor", "administrador"), cajaH.GuardarConfig)
		}

		cuentas := v1.Group("/cuentas")
		{
			// Inbound boundary from the sales subsystem
			cuentas.POST("/venta-credito", middleware.RequireRole("cajero", "supervisor", "administrador"), cuentasH.NotificarVentaCredito)
			cuentas.POST("/:id/saldar", middleware.RequireRole("cajero", "supervisor", "administrador"), cuentasH.Saldar)
			cuentas.GET("/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), cuentasH.Obtener)
			cuentas.GET("/deudor/:deudor_id/abiertas", middleware.RequireRole("cajero", "supervisor", "administrador"), cuentasH.ListarAbiertas)
			cuentas.GET("/deudor/:deudor_id", middleware.RequireRole("supervisor", "administrador"), cuentasH.ListarPorDeudor)
		}

		// Inbound boundary from the payroll subsystem
		nomina := v1.Group("/nomina", middleware.RequireRole("supervisor", "administrador"))
		{
			nomina.POST("/anticipo", nominaH.NotificarAnticipo)
			nomina.POST("/sueldo", nominaH.NotificarPagoSueldo)
		}

		auditoria := v1.Group("/auditoria", middleware.RequireRole("supervisor", "administrador"))
		{
			auditoria.GET("/sesion/:id", auditoriaH.HistorialSesion)
			auditoria.GET("/caja/:caja_id", auditoriaH.HistorialCaja)
		}

		// Catálogo — administrador can write, all authenticated can read
		v1.GET("/catalogo", middleware.RequireRole("cajero", "supervisor", "administrador"), catalogoH.Listar)
		catalogo := v1.Group("/catalogo", middleware.RequireRole("administrador"))
		{
			catalogo.POST("", catalogoH.Registrar)
			catalogo.DELETE("/:codigo", catalogoH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
