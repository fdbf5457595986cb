// cmd/seed loads a small demo catalog (products, raw materials, recipes,
// one client) through the service layer, so opening stock is written as
// ledger movements. It does nothing if products already exist.
package main

import (
	"context"
	"os"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/config"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type productoSeed struct {
	req     dto.CrearProductoRequest
	receta  map[string]string // materia prima -> cantidad por unidad
	inicial int
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	var existentes int64
	if err := db.WithContext(ctx).Model(&model.Producto{}).Count(&existentes).Error; err != nil {
		log.Fatal().Err(err).Msg("count productos")
	}
	if existentes > 0 {
		log.Info().Int64("productos", existentes).Msg("catalog already seeded, nothing to do")
		return
	}

	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	materiaRepo := repository.NewMateriaPrimaRepository(db)
	recetaRepo := repository.NewRecetaRepository(db)

	productos := service.NewProductoService(productoRepo, repository.NewHistorialPrecioRepository(db))
	materias := service.NewMateriaPrimaService(materiaRepo)
	recetas := service.NewRecetaService(recetaRepo, productoRepo, materiaRepo, cfg.NombreNegocio, cfg.PDFStoragePath)
	inventario := service.NewInventarioService(movimientoRepo, productoRepo)
	clientes := service.NewClienteService(repository.NewClienteRepository(db))

	mps := []struct {
		nombre, unidad, costo, compra string
	}{
		{"Datil medjool", "kg", "180.00", "50"},
		{"Nuez pecana", "kg", "260.00", "20"},
		{"Frasco vidrio 250 g", "pieza", "9.50", "300"},
	}
	mpIDs := make(map[string]uint, len(mps))
	for _, m := range mps {
		resp, err := materias.Crear(ctx, dto.CrearMateriaPrimaRequest{
			Nombre:        m.nombre,
			UnidadMedida:  m.unidad,
			CostoUnitario: decimal.RequireFromString(m.costo),
		})
		if err != nil {
			log.Fatal().Err(err).Str("materia_prima", m.nombre).Msg("crear materia prima")
		}
		mpIDs[m.nombre] = resp.ID
		if _, err := materias.RegistrarCompra(ctx, resp.ID, dto.CompraMPRequest{
			Cantidad: decimal.RequireFromString(m.compra),
			Nota:     "Inventario inicial",
		}); err != nil {
			log.Fatal().Err(err).Str("materia_prima", m.nombre).Msg("compra inicial")
		}
	}

	mayoreo := decimal.RequireFromString("75.00")
	seeds := []productoSeed{
		{
			req: dto.CrearProductoRequest{
				Nombre:        "Datiles rellenos de nuez",
				Presentacion:  "frasco 250 g",
				PrecioVenta:   decimal.RequireFromString("95.00"),
				PrecioMayoreo: &mayoreo,
			},
			receta: map[string]string{
				"Datil medjool":       "0.2000",
				"Nuez pecana":         "0.0500",
				"Frasco vidrio 250 g": "1",
			},
			inicial: 40,
		},
		{
			req: dto.CrearProductoRequest{
				Nombre:       "Pulpa de datil",
				Presentacion: "frasco 250 g",
				PrecioVenta:  decimal.RequireFromString("70.00"),
			},
			receta: map[string]string{
				"Datil medjool":       "0.2500",
				"Frasco vidrio 250 g": "1",
			},
		},
	}

	for _, s := range seeds {
		p, err := productos.Crear(ctx, s.req)
		if err != nil {
			log.Fatal().Err(err).Str("producto", s.req.Nombre).Msg("crear producto")
		}
		for mp, cant := range s.receta {
			if _, err := recetas.Guardar(ctx, p.ID, dto.GuardarRecetaRequest{
				MateriaPrimaID:    mpIDs[mp],
				CantidadPorUnidad: decimal.RequireFromString(cant),
				UnidadMedida:      "por unidad",
			}); err != nil {
				log.Fatal().Err(err).Str("producto", s.req.Nombre).Msg("guardar receta")
			}
		}
		if s.inicial > 0 {
			if _, err := inventario.Ajustar(ctx, dto.AjusteRequest{
				ProductoID: p.ID,
				Cantidad:   s.inicial,
				Nota:       "Inventario inicial",
			}); err != nil {
				log.Fatal().Err(err).Str("producto", s.req.Nombre).Msg("ajuste inicial")
			}
		}
	}

	email := "compras@cafe-demo.mx"
	if _, err := clientes.Crear(ctx, dto.CrearClienteRequest{Nombre: "Cafe Demo", Email: &email}); err != nil {
		log.Fatal().Err(err).Msg("crear cliente")
	}

	log.Info().Int("productos", len(seeds)).Int("materias_primas", len(mps)).Msg("demo catalog seeded")
}
