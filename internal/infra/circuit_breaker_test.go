package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp: 421 service not available")

func TestCircuitBreaker_AbreTrasFallos(t *testing.T) {
	reloj := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return reloj }

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errSMTP }), errSMTP)
		assert.Equal(t, CBClosed, cb.State())
	}
	assert.ErrorIs(t, cb.Execute(func() error { return errSMTP }), errSMTP)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)

	reloj = reloj.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.Equal(t, "half-open", cb.State().String())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SondaFallidaReabre(t *testing.T) {
	reloj := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	cb.now = func() time.Time { return reloj }

	_ = cb.Execute(func() error { return errSMTP })
	reloj = reloj.Add(2 * time.Second)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errSMTP })
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_ExitoReiniciaConteo(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	_ = cb.Execute(func() error { return errSMTP })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errSMTP })
	assert.Equal(t, CBClosed, cb.State())
}

func TestGenerarFichaReceta(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fichas")
	p := &model.Producto{ID: 3, Nombre: "Datiles rellenos", Presentacion: "frasco 250 g", PrecioVenta: decimal.NewFromInt(95)}
	lineas := []model.Receta{{
		MateriaPrimaID:    1,
		CantidadPorUnidad: decimal.RequireFromString("0.2"),
		UnidadMedida:      "kg",
		MateriaPrima:      &model.MateriaPrima{ID: 1, Nombre: "Datil medjool", CostoUnitario: decimal.NewFromInt(180)},
	}}

	path, err := GenerarFichaReceta("Oro de Tamar", p, lineas, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ficha_3.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}
