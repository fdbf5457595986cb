package repository

import (
	"context"
	"testing"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMovimientoRepo_Disponible(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovimientoRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(cantidad\), 0\) FROM movimientos_inventario WHERE producto_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(12))

	n, err := repo.Disponible(context.Background(), nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovimientoRepo_RegistrarRechazaSignoInvalido(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovimientoRepository(db)

	err := repo.Registrar(context.Background(), nil, &model.MovimientoInventario{
		ProductoID: 1, Tipo: model.MovVenta, Cantidad: 3,
	})
	assert.Error(t, err)
	// Nothing reaches the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovimientoRepo_BloquearOrdenaYDeduplica(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovimientoRepository(db)

	for _, id := range []int{2, 5, 9} {
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs(int(lockProducto), id).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, repo.Bloquear(context.Background(), db, []uint{9, 2, 5, 2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovimientoRepo_BloquearSinTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovimientoRepository(db)

	require.NoError(t, repo.Bloquear(context.Background(), nil, []uint{1}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginate(t *testing.T) {
	page, limit, offset := paginate(0, 0)
	assert.Equal(t, []int{1, 100, 0}, []int{page, limit, offset})

	page, limit, offset = paginate(3, 20)
	assert.Equal(t, []int{3, 20, 40}, []int{page, limit, offset})

	_, limit, _ = paginate(1, 10000)
	assert.Equal(t, 100, limit)
}
