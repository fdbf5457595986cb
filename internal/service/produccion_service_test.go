package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduccionService(f *fixture) service.ProduccionService {
	return service.NewProduccionService(f.movimientos, f.productos, f.recetas, f.materias)
}

func guardarReceta(t *testing.T, f *fixture, productoID, materiaID uint, cantidad string) {
	t.Helper()
	svc := service.NewRecetaService(f.recetas, f.productos, f.materias, "Oro de Tamar", t.TempDir())
	_, err := svc.Guardar(context.Background(), productoID, dto.GuardarRecetaRequest{
		MateriaPrimaID:    materiaID,
		CantidadPorUnidad: dec(cantidad),
		UnidadMedida:      "por unidad",
	})
	require.NoError(t, err)
}

// ── Producir ─────────────────────────────────────────────────────────────────

func TestProduccion_ConsumeSegunReceta(t *testing.T) {
	f := newFixture()
	svc := newProduccionService(f)

	p := f.productos.nuevo("Datiles rellenos", "95.00")
	datil := f.materias.nueva("Datil medjool", "kg", "180", "5")
	frasco := f.materias.nueva("Frasco 250 g", "pieza", "9.50", "30")
	guardarReceta(t, f, p.ID, datil.ID, "0.2")
	guardarReceta(t, f, p.ID, frasco.ID, "1")

	resp, err := svc.Producir(context.Background(), dto.ProduccionRequest{ProductoID: p.ID, Cantidad: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Movimiento.Cantidad)
	assert.Equal(t, string(model.MovProduccion), resp.Movimiento.Tipo)
	require.Len(t, resp.Consumos, 2)

	assert.Equal(t, 20, f.movimientos.stock(p.ID))
	assert.True(t, f.materias.stock(datil.ID).Equal(dec("1")), "datil = %s", f.materias.stock(datil.ID))
	assert.True(t, f.materias.stock(frasco.ID).Equal(dec("10")))

	for _, c := range resp.Consumos {
		assert.Equal(t, string(model.MovMPConsumo), c.Tipo)
		require.NotNil(t, c.ProductoID)
		assert.Equal(t, p.ID, *c.ProductoID)
		assert.NotNil(t, c.CostoUnitario)
	}
}

func TestProduccion_TodoONada(t *testing.T) {
	f := newFixture()
	svc := newProduccionService(f)

	p := f.productos.nuevo("Datiles rellenos", "95.00")
	datil := f.materias.nueva("Datil medjool", "kg", "180", "10")
	nuez := f.materias.nueva("Nuez pecana", "kg", "260", "0.5")
	guardarReceta(t, f, p.ID, datil.ID, "0.2")
	guardarReceta(t, f, p.ID, nuez.ID, "0.05")

	_, err := svc.Producir(context.Background(), dto.ProduccionRequest{ProductoID: p.ID, Cantidad: 20})
	require.Error(t, err)
	assert.Equal(t, apierror.Precondicion, apierror.KindOf(err))
	assert.ErrorContains(t, err, "materia prima insuficiente: Nuez pecana")

	assert.Equal(t, 0, f.movimientos.stock(p.ID))
	assert.Empty(t, f.movimientos.porTipo(model.MovProduccion))
	assert.True(t, f.materias.stock(datil.ID).Equal(dec("10")))
	assert.True(t, f.materias.stock(nuez.ID).Equal(dec("0.5")))
}

func TestProduccion_SinReceta(t *testing.T) {
	f := newFixture()
	svc := newProduccionService(f)
	p := f.productos.nuevo("Datil a granel", "60.00")

	resp, err := svc.Producir(context.Background(), dto.ProduccionRequest{ProductoID: p.ID, Cantidad: 12})
	require.NoError(t, err)
	assert.Empty(t, resp.Consumos)
	assert.Equal(t, 12, f.movimientos.stock(p.ID))
	assert.Empty(t, f.materias.movs)
}

func TestProduccion_Validaciones(t *testing.T) {
	f := newFixture()
	svc := newProduccionService(f)

	_, err := svc.Producir(context.Background(), dto.ProduccionRequest{ProductoID: 1, Cantidad: 0})
	assert.Equal(t, apierror.Validacion, apierror.KindOf(err))

	_, err = svc.Producir(context.Background(), dto.ProduccionRequest{ProductoID: 77, Cantidad: 1})
	assert.Equal(t, apierror.NoEncontrado, apierror.KindOf(err))

	p := f.productos.nuevo("Descontinuado", "10.00")
	p.Activo = false
	_, err = svc.Producir(context.Background(), dto.ProduccionRequest{ProductoID: p.ID, Cantidad: 1})
	assert.Equal(t, apierror.Precondicion, apierror.KindOf(err))
}

// ── Recetas ──────────────────────────────────────────────────────────────────

func TestReceta_CostoYMargen(t *testing.T) {
	f := newFixture()
	svc := service.NewRecetaService(f.recetas, f.productos, f.materias, "Oro de Tamar", t.TempDir())

	p := f.productos.nuevo("Datiles rellenos", "95.00")
	datil := f.materias.nueva("Datil medjool", "kg", "180", "0")
	frasco := f.materias.nueva("Frasco 250 g", "pieza", "9.50", "0")
	guardarReceta(t, f, p.ID, datil.ID, "0.2")
	guardarReceta(t, f, p.ID, frasco.ID, "1")

	// Saving the same pair again overwrites the ratio.
	guardarReceta(t, f, p.ID, datil.ID, "0.25")

	resp, err := svc.Obtener(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, resp.Lineas, 2)
	assert.True(t, resp.CostoUnitario.Equal(dec("54.5")), "costo = %s", resp.CostoUnitario)
	assert.True(t, resp.Margen.Equal(dec("40.5")))
	assert.True(t, resp.MargenPct.Equal(dec("42.63")), "margen_pct = %s", resp.MargenPct)

	require.NoError(t, svc.Eliminar(context.Background(), p.ID, frasco.ID))
	err = svc.Eliminar(context.Background(), p.ID, frasco.ID)
	assert.Equal(t, apierror.NoEncontrado, apierror.KindOf(err))
}

func TestReceta_GuardarMateriaInexistente(t *testing.T) {
	f := newFixture()
	svc := service.NewRecetaService(f.recetas, f.productos, f.materias, "Oro de Tamar", t.TempDir())
	p := f.productos.nuevo("Datiles", "95.00")

	_, err := svc.Guardar(context.Background(), p.ID, dto.GuardarRecetaRequest{
		MateriaPrimaID:    9,
		CantidadPorUnidad: dec("1"),
		UnidadMedida:      "kg",
	})
	assert.Equal(t, apierror.NoEncontrado, apierror.KindOf(err))
}

func TestReceta_GenerarFicha(t *testing.T) {
	f := newFixture()
	dir := t.TempDir()
	svc := service.NewRecetaService(f.recetas, f.productos, f.materias, "Oro de Tamar", dir)

	p := f.productos.nuevo("Datiles rellenos", "95.00")
	datil := f.materias.nueva("Datil medjool", "kg", "180", "0")
	guardarReceta(t, f, p.ID, datil.ID, "0.2")

	path, err := svc.GenerarFicha(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// ── Materias primas ──────────────────────────────────────────────────────────

func TestMateriaPrima_CompraActualizaCosto(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := service.NewMateriaPrimaService(f.materias)

	mp, err := svc.Crear(ctx, dto.CrearMateriaPrimaRequest{Nombre: "Datil", UnidadMedida: "kg", CostoUnitario: dec("150")})
	require.NoError(t, err)

	costo := dec("175.5")
	_, err = svc.RegistrarCompra(ctx, mp.ID, dto.CompraMPRequest{Cantidad: dec("12.5"), CostoUnitario: &costo})
	require.NoError(t, err)

	got, err := svc.ObtenerPorID(ctx, mp.ID)
	require.NoError(t, err)
	assert.True(t, got.CostoUnitario.Equal(costo))
	assert.True(t, got.Disponible.Equal(dec("12.5")))
}

func TestMateriaPrima_MermaSinStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := service.NewMateriaPrimaService(f.materias)
	mp := f.materias.nueva("Nuez", "kg", "260", "1")

	_, err := svc.RegistrarMerma(ctx, mp.ID, dto.MermaMPRequest{Cantidad: dec("1.5"), Nota: "humedad"})
	assert.Equal(t, apierror.Precondicion, apierror.KindOf(err))

	_, err = svc.Ajustar(ctx, mp.ID, dto.AjusteMPRequest{Cantidad: dec("-0.25"), Nota: "conteo fisico"})
	require.NoError(t, err)
	assert.True(t, f.materias.stock(mp.ID).Equal(dec("0.75")))
}

func TestMateriaPrima_CantidadMasDe4Decimales(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := service.NewMateriaPrimaService(f.materias)
	mp := f.materias.nueva("Nuez", "kg", "260", "1")
	antes := len(f.materias.movs)

	_, err := svc.RegistrarCompra(ctx, mp.ID, dto.CompraMPRequest{Cantidad: dec("0.00001")})
	assert.Equal(t, apierror.Validacion, apierror.KindOf(err))

	_, err = svc.RegistrarMerma(ctx, mp.ID, dto.MermaMPRequest{Cantidad: dec("0.12345")})
	assert.Equal(t, apierror.Validacion, apierror.KindOf(err))

	_, err = svc.Ajustar(ctx, mp.ID, dto.AjusteMPRequest{Cantidad: dec("-0.00005")})
	assert.Equal(t, apierror.Validacion, apierror.KindOf(err))

	assert.Len(t, f.materias.movs, antes)
	assert.True(t, f.materias.stock(mp.ID).Equal(dec("1")))
}

func TestReceta_GuardarCantidadMasDe4Decimales(t *testing.T) {
	f := newFixture()
	svc := service.NewRecetaService(f.recetas, f.productos, f.materias, "Oro de Tamar", t.TempDir())
	p := f.productos.nuevo("Datiles", "95.00")
	datil := f.materias.nueva("Datil medjool", "kg", "180", "0")

	_, err := svc.Guardar(context.Background(), p.ID, dto.GuardarRecetaRequest{
		MateriaPrimaID:    datil.ID,
		CantidadPorUnidad: dec("0.00001"),
		UnidadMedida:      "kg",
	})
	assert.Equal(t, apierror.Validacion, apierror.KindOf(err))
	assert.Empty(t, f.recetas.lineas)
}
