//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/config"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"
	"github.com/crisgp1/orodetamar-sub000/internal/middleware"
	"github.com/crisgp1/orodetamar-sub000/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func expectStatus(t *testing.T, resp *http.Response, status int, dest any) {
	t.Helper()
	if resp.StatusCode != status {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		require.Equalf(t, status, resp.StatusCode, "body: %v", body)
	}
	if dest != nil {
		decodeJSON(t, resp, dest)
		return
	}
	resp.Body.Close()
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("orodetamar_test"),
		tcPostgres.WithUsername("orodetamar"),
		tcPostgres.WithPassword("orodetamar"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:           8000,
		Env:            "test",
		JWTSecret:      "test-secret-key",
		DatabaseURL:    pgURL,
		MigrationsPath: filepath.Join("..", "..", "migrations"),
		RedisURL:       rdURL,
		WorkerPoolSize: 1,
		PDFStoragePath: t.TempDir(),
		NombreNegocio:  "Oro de Tamar",
	}

	require.NoError(t, infra.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath))

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	r := router.New(cfg, db, rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig()), nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	now := time.Now()
	token, err := middleware.FirmarToken(cfg.JWTSecret, middleware.JWTClaims{
		Username: "admin-e2e",
		Rol:      middleware.RolAdministrador,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-e2e",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	return &testEnv{server: srv, token: token, engine: r}
}

type idResp struct {
	ID uint `json:"id"`
}

func (env *testEnv) crearProducto(t *testing.T, nombre string, precio, stock int) uint {
	t.Helper()
	var p idResp
	expectStatus(t, do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{"nombre": nombre, "presentacion": "frasco 250 g", "precio_venta": fmt.Sprint(precio)}),
		env.token), http.StatusCreated, &p)

	if stock > 0 {
		expectStatus(t, do(t, env.server, "POST", "/v1/inventario/ajustes",
			jsonBody(t, map[string]any{"producto_id": p.ID, "cantidad": stock, "nota": "inventario inicial"}),
			env.token), http.StatusCreated, nil)
	}
	return p.ID
}

func (env *testEnv) crearCliente(t *testing.T, nombre string) uint {
	t.Helper()
	var c idResp
	expectStatus(t, do(t, env.server, "POST", "/v1/clientes",
		jsonBody(t, map[string]any{"nombre": nombre}), env.token), http.StatusCreated, &c)
	return c.ID
}

func (env *testEnv) disponible(t *testing.T, productoID uint) int {
	t.Helper()
	var stock []struct {
		ProductoID uint `json:"producto_id"`
		Disponible int  `json:"disponible"`
	}
	expectStatus(t, do(t, env.server, "GET", "/v1/inventario/stock", nil, env.token), http.StatusOK, &stock)
	for _, s := range stock {
		if s.ProductoID == productoID {
			return s.Disponible
		}
	}
	t.Fatalf("producto %d sin stock reportado", productoID)
	return 0
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_Health(t *testing.T) {
	env := setupTestEnv(t)

	var body map[string]any
	expectStatus(t, do(t, env.server, "GET", "/health", nil, ""), http.StatusOK, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "connected", body["redis"])

	resp := do(t, env.server, "GET", "/v1/productos", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2E_CicloConsignacion(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.crearProducto(t, "Datiles rellenos", 10, 50)
	cli := env.crearCliente(t, "Cafe Centro")

	var cons struct {
		ID       uint   `json:"id"`
		Estado   string `json:"estado"`
		Detalles []struct {
			ID uint `json:"id"`
		} `json:"detalles"`
	}
	expectStatus(t, do(t, env.server, "POST", "/v1/consignaciones",
		jsonBody(t, map[string]any{
			"cliente_id": cli,
			"detalles":   []map[string]any{{"producto_id": prod, "cantidad": 20}},
		}), env.token), http.StatusCreated, &cons)
	assert.Equal(t, "ACTIVA", cons.Estado)
	require.Len(t, cons.Detalles, 1)
	assert.Equal(t, 30, env.disponible(t, prod))

	var liq struct {
		Estado         string          `json:"estado"`
		TotalVendido   decimal.Decimal `json:"total_vendido"`
		SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
	}
	expectStatus(t, do(t, env.server, "POST", fmt.Sprintf("/v1/consignaciones/%d/liquidar", cons.ID),
		jsonBody(t, map[string]any{
			"detalles": []map[string]any{{
				"detalle_id":        cons.Detalles[0].ID,
				"cantidad_vendida":  15,
				"cantidad_devuelta": 5,
			}},
		}), env.token), http.StatusOK, &liq)
	assert.Equal(t, "SALDO_PENDIENTE", liq.Estado)
	assert.True(t, liq.TotalVendido.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 35, env.disponible(t, prod))

	expectStatus(t, do(t, env.server, "POST", fmt.Sprintf("/v1/consignaciones/%d/pagos", cons.ID),
		jsonBody(t, map[string]any{"monto": "150", "metodo_pago": "EFECTIVO"}), env.token), http.StatusCreated, nil)

	var final struct {
		Estado string `json:"estado"`
	}
	expectStatus(t, do(t, env.server, "GET", fmt.Sprintf("/v1/consignaciones/%d", cons.ID), nil, env.token), http.StatusOK, &final)
	assert.Equal(t, "LIQUIDADA", final.Estado)

	var movs struct {
		Data []struct {
			Tipo     string `json:"tipo"`
			Cantidad int    `json:"cantidad"`
		} `json:"data"`
	}
	expectStatus(t, do(t, env.server, "GET", fmt.Sprintf("/v1/inventario/movimientos?consignacion_id=%d", cons.ID), nil, env.token), http.StatusOK, &movs)
	suma := 0
	for _, m := range movs.Data {
		suma += m.Cantidad
	}
	assert.Equal(t, -15, suma)
}

func TestE2E_EntregaPedido(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.crearProducto(t, "Pulpa de datil", 25, 4)
	cli := env.crearCliente(t, "Tienda Norte")

	var ped struct {
		ID     uint            `json:"id"`
		Estado string          `json:"estado"`
		Total  decimal.Decimal `json:"total"`
	}
	expectStatus(t, do(t, env.server, "POST", "/v1/pedidos",
		jsonBody(t, map[string]any{
			"cliente_id": cli,
			"detalles":   []map[string]any{{"producto_id": prod, "cantidad": 3}},
		}), env.token), http.StatusCreated, &ped)
	assert.Equal(t, "RECIBIDO", ped.Estado)
	assert.True(t, ped.Total.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, 4, env.disponible(t, prod))

	var entregado struct {
		Estado         string          `json:"estado"`
		SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
	}
	expectStatus(t, do(t, env.server, "POST", fmt.Sprintf("/v1/pedidos/%d/entregar", ped.ID),
		jsonBody(t, map[string]any{"metodo_pago": "EFECTIVO"}), env.token), http.StatusOK, &entregado)
	assert.Equal(t, "ENTREGADO", entregado.Estado)
	assert.True(t, entregado.SaldoPendiente.IsZero())
	assert.Equal(t, 1, env.disponible(t, prod))

	resp := do(t, env.server, "POST", fmt.Sprintf("/v1/pedidos/%d/entregar", ped.ID), jsonBody(t, map[string]any{}), env.token)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, env.disponible(t, prod))
}

// Concurrent stand sales on the same product must never overdraw the ledger.
func TestE2E_VentasConcurrentesNoSobregiran(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.crearProducto(t, "Datil natural", 12, 5)

	const intentos = 10
	var wg sync.WaitGroup
	codes := make(chan int, intentos)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest("POST", env.server.URL+"/v1/inventario/ventas-stand",
				bytes.NewBufferString(fmt.Sprintf(`{"producto_id":%d,"cantidad":1}`, prod)))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+env.token)
			resp, err := env.server.Client().Do(req)
			if err != nil {
				codes <- 0
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(codes)

	ok := 0
	for c := range codes {
		if c == http.StatusCreated {
			ok++
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 0, env.disponible(t, prod))
}

func TestE2E_Reproceso(t *testing.T) {
	env := setupTestEnv(t)
	origen := env.crearProducto(t, "Datil con hueso", 8, 10)
	destino := env.crearProducto(t, "Pulpa", 20, 0)

	var rep struct {
		Perdida int `json:"perdida"`
	}
	expectStatus(t, do(t, env.server, "POST", "/v1/inventario/reprocesos",
		jsonBody(t, map[string]any{
			"producto_origen_id":  origen,
			"cantidad_origen":     10,
			"producto_destino_id": destino,
			"cantidad_destino":    7,
		}), env.token), http.StatusCreated, &rep)
	assert.Equal(t, 3, rep.Perdida)
	assert.Equal(t, 0, env.disponible(t, origen))
	assert.Equal(t, 7, env.disponible(t, destino))
}
