package router

import (
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/config"
	"github.com/crisgp1/orodetamar-sub000/internal/handler"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"
	"github.com/crisgp1/orodetamar-sub000/internal/middleware"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// storage may be nil, which disables proof-of-payment uploads.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker, storage service.ArchivoStorage) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 10 << 20

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	materiaRepo := repository.NewMateriaPrimaRepository(db)
	recetaRepo := repository.NewRecetaRepository(db)
	consignacionRepo := repository.NewConsignacionRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	productoSvc := service.NewProductoService(productoRepo, repository.NewHistorialPrecioRepository(db))
	clienteSvc := service.NewClienteService(clienteRepo)
	inventarioSvc := service.NewInventarioService(movimientoRepo, productoRepo)
	materiaSvc := service.NewMateriaPrimaService(materiaRepo)
	recetaSvc := service.NewRecetaService(recetaRepo, productoRepo, materiaRepo, cfg.NombreNegocio, cfg.PDFStoragePath)
	produccionSvc := service.NewProduccionService(movimientoRepo, productoRepo, recetaRepo, materiaRepo)
	reprocesoSvc := service.NewReprocesoService(movimientoRepo, productoRepo, inventarioSvc)
	consignacionSvc := service.NewConsignacionService(consignacionRepo, clienteRepo, productoRepo, movimientoRepo, inventarioSvc)
	pedidoSvc := service.NewPedidoService(pedidoRepo, clienteRepo, productoRepo, inventarioSvc, storage)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc, produccionSvc, reprocesoSvc)
	materiasH := handler.NewMateriasPrimasHandler(materiaSvc)
	recetasH := handler.NewRecetasHandler(recetaSvc)
	consignacionesH := handler.NewConsignacionesHandler(consignacionSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	adminH := handler.NewAdminHandler(rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	admin := middleware.RequireRole(middleware.RolAdministrador)
	staff := middleware.RequireRole(middleware.RolAdministrador, middleware.RolOperador)

	// The limiter runs after JWTAuth so it counts per user, not per IP.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RateLimiter(1000, time.Minute), staff)
	{
		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		v1.GET("/productos/:id/historial-precios", productosH.HistorialPrecios)
		v1.POST("/productos", admin, productosH.Crear)
		v1.PUT("/productos/:id", admin, productosH.Actualizar)
		v1.DELETE("/productos/:id", admin, productosH.Desactivar)

		v1.GET("/productos/:id/receta", recetasH.Obtener)
		v1.GET("/productos/:id/receta/pdf", recetasH.DescargarFicha)
		v1.PUT("/productos/:id/receta", admin, recetasH.Guardar)
		v1.DELETE("/productos/:id/receta/:materia_prima_id", admin, recetasH.Eliminar)

		v1.GET("/clientes", clientesH.Listar)
		v1.GET("/clientes/:id", clientesH.ObtenerPorID)
		v1.POST("/clientes", clientesH.Crear)

		inv := v1.Group("/inventario")
		{
			inv.GET("/stock", inventarioH.Stock)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.POST("/ajustes", admin, inventarioH.Ajustar)
			inv.POST("/mermas", inventarioH.RegistrarMerma)
			inv.POST("/ventas-stand", inventarioH.VenderEnStand)
			inv.POST("/produccion", inventarioH.Producir)
			inv.POST("/reprocesos", inventarioH.Reprocesar)
		}

		mp := v1.Group("/materias-primas")
		{
			mp.GET("", materiasH.Listar)
			mp.GET("/movimientos", materiasH.ListarMovimientos)
			mp.GET("/:id", materiasH.ObtenerPorID)
			mp.POST("", admin, materiasH.Crear)
			mp.POST("/:id/compras", materiasH.RegistrarCompra)
			mp.POST("/:id/mermas", materiasH.RegistrarMerma)
			mp.POST("/:id/ajustes", admin, materiasH.Ajustar)
		}

		cons := v1.Group("/consignaciones")
		{
			cons.POST("", consignacionesH.Crear)
			cons.GET("", consignacionesH.Listar)
			cons.GET("/:id", consignacionesH.Obtener)
			cons.POST("/:id/revision", consignacionesH.MarcarEnRevision)
			cons.POST("/:id/liquidar", consignacionesH.Liquidar)
			cons.POST("/:id/pagos", consignacionesH.RegistrarPago)
			cons.POST("/:id/cancelar", admin, consignacionesH.Cancelar)
		}

		ped := v1.Group("/pedidos")
		{
			ped.POST("", pedidosH.Crear)
			ped.GET("", pedidosH.Listar)
			ped.GET("/:id", pedidosH.Obtener)
			ped.PUT("/:id", pedidosH.Editar)
			ped.POST("/:id/avanzar", pedidosH.Avanzar)
			ped.POST("/:id/entregar", pedidosH.Entregar)
			ped.POST("/:id/pagos", pedidosH.RegistrarPago)
			ped.POST("/:id/cancelar", pedidosH.Cancelar)
			ped.PATCH("/:id/seguimiento", pedidosH.ActualizarSeguimiento)
			ped.POST("/:id/comprobantes", pedidosH.RegistrarComprobante)
			ped.POST("/:id/comprobantes/archivo", middleware.RateLimiter(20, time.Minute), pedidosH.SubirComprobante)
			ped.POST("/:id/comprobantes/:comprobante_id/aprobar", admin, pedidosH.AprobarComprobante)
			ped.POST("/:id/comprobantes/:comprobante_id/rechazar", admin, pedidosH.RechazarComprobante)
		}

		adm := v1.Group("/admin", admin)
		{
			adm.GET("/dlq", adminH.EstadoDLQ)
			adm.POST("/dlq/reintentar", adminH.ReintentarDLQ)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
