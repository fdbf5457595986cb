package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ── Fake ProductoService ─────────────────────────────────────────────────────

type fakeProductoService struct {
	err     error
	creados []dto.CrearProductoRequest
}

func (f *fakeProductoService) Crear(_ context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.creados = append(f.creados, req)
	return &dto.ProductoResponse{ID: 1, Nombre: req.Nombre, PrecioVenta: req.PrecioVenta, Activo: true}, nil
}

func (f *fakeProductoService) ObtenerPorID(_ context.Context, id uint) (*dto.ProductoResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ProductoResponse{ID: id, Nombre: "Datiles"}, nil
}

func (f *fakeProductoService) Listar(context.Context, dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	return nil, f.err
}

func (f *fakeProductoService) Actualizar(_ context.Context, id uint, _ dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	return &dto.ProductoResponse{ID: id}, f.err
}

func (f *fakeProductoService) Desactivar(context.Context, uint) error { return f.err }

func (f *fakeProductoService) HistorialPrecios(context.Context, uint, int, int) (*dto.HistorialPrecioListResponse, error) {
	return &dto.HistorialPrecioListResponse{}, f.err
}

func productosRouter(svc *fakeProductoService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewProductosHandler(svc)
	r.POST("/productos", h.Crear)
	r.GET("/productos/:id", h.ObtenerPorID)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCrearProducto_Created(t *testing.T) {
	svc := &fakeProductoService{}
	w := doJSON(productosRouter(svc), http.MethodPost, "/productos", map[string]any{
		"nombre":       "Datiles rellenos",
		"presentacion": "frasco 250 g",
		"precio_venta": "95.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, svc.creados, 1)
	assert.True(t, svc.creados[0].PrecioVenta.Equal(decimal.NewFromInt(95)))
}

func TestCrearProducto_Validacion422(t *testing.T) {
	svc := &fakeProductoService{}
	w := doJSON(productosRouter(svc), http.MethodPost, "/productos", map[string]any{
		"nombre":       "X",
		"precio_venta": "0",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "min", body.Fields["Nombre"])
	assert.Equal(t, "required", body.Fields["PrecioVenta"])
	assert.Empty(t, svc.creados)
}

func TestCrearProducto_JSONInvalido(t *testing.T) {
	w := doJSON(productosRouter(&fakeProductoService{}), http.MethodPost, "/productos", "{nombre:")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObtenerProducto_IDInvalido(t *testing.T) {
	r := productosRouter(&fakeProductoService{})
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/productos/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/productos/0", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/productos/7", nil).Code)
}

func TestRespondError_Mapeo(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{apierror.Validation("cantidad invalida"), http.StatusUnprocessableEntity, "cantidad invalida"},
		{apierror.Precondition("stock insuficiente"), http.StatusBadRequest, "stock insuficiente"},
		{apierror.NotFound("producto 9 no encontrado"), http.StatusNotFound, "producto 9 no encontrado"},
		{apierror.Conflict("reintente"), http.StatusConflict, "reintente"},
		{errors.New("pq: deadlock detected"), http.StatusInternalServerError, "Error al obtener producto"},
	}
	for _, tc := range cases {
		w := doJSON(productosRouter(&fakeProductoService{err: tc.err}), http.MethodGet, "/productos/1", nil)
		assert.Equal(t, tc.status, w.Code, tc.detail)

		var body apierror.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.detail, body.Detail)
	}
}

// ── Health ───────────────────────────────────────────────────────────────────

func TestHealth_SinRedis(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	mock.ExpectPing()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Health(db, nil, infra.NewCircuitBreaker(infra.DefaultCBConfig())))

	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
	assert.Equal(t, "closed", body["mail"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
