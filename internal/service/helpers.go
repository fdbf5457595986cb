package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// toleranciaPago absorbs rounding when comparing collected against owed amounts.
var toleranciaPago = decimal.NewFromFloat(0.01)

var cien = decimal.NewFromInt(100)

// validarMonto rejects non-positive amounts and amounts finer than a cent,
// which numeric(12,2) columns would silently round.
func validarMonto(m decimal.Decimal, campo string) error {
	if !m.IsPositive() {
		return apierror.Validation("%s debe ser mayor a cero", campo)
	}
	if !m.Equal(m.Round(2)) {
		return apierror.Validation("%s admite como maximo 2 decimales", campo)
	}
	return nil
}

// validarCantidadMP rejects raw material quantities beyond the 4 decimals
// stored by numeric(12,4).
func validarCantidadMP(q decimal.Decimal, campo string) error {
	if !q.Equal(q.Round(4)) {
		return apierror.Validation("%s admite como maximo 4 decimales", campo)
	}
	return nil
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// storeErr turns gorm.ErrRecordNotFound into a NoEncontrado error and wraps
// anything else as a storage failure.
func storeErr(err error, entidad string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("%s %d no encontrado", entidad, id)
	}
	return fmt.Errorf("%s %d: %w", entidad, id, err)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func normalizarPagina(page, limit, defLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = defLimit
	}
	return page, limit
}

func fmtFecha(t time.Time) string { return t.Format(time.RFC3339) }

func fmtFechaPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtFecha(*t)
	return &s
}

// diasTranscurridos counts whole days between desde and ahora.
func diasTranscurridos(desde, ahora time.Time) int {
	d := int(ahora.Sub(desde).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func nombreProducto(p *model.Producto, id uint) string {
	if p == nil {
		return fmt.Sprintf("producto %d", id)
	}
	if p.Presentacion != "" {
		return p.Nombre + " " + p.Presentacion
	}
	return p.Nombre
}

func nombreCliente(c *model.Cliente) string {
	if c == nil {
		return ""
	}
	return c.Nombre
}

func movimientoToResponse(m *model.MovimientoInventario) dto.MovimientoResponse {
	r := dto.MovimientoResponse{
		ID:               m.ID,
		ProductoID:       m.ProductoID,
		Cantidad:         m.Cantidad,
		Tipo:             string(m.Tipo),
		ConsignacionID:   m.ConsignacionID,
		PedidoID:         m.PedidoID,
		ProductoOrigenID: m.ProductoOrigenID,
		Nota:             m.Nota,
		CreatedAt:        fmtFecha(m.CreatedAt),
	}
	if m.Producto != nil {
		r.Producto = nombreProducto(m.Producto, m.ProductoID)
	}
	return r
}

func movimientoMPToResponse(m *model.MovimientoMateriaPrima) dto.MovimientoMPResponse {
	r := dto.MovimientoMPResponse{
		ID:             m.ID,
		MateriaPrimaID: m.MateriaPrimaID,
		Cantidad:       m.Cantidad,
		Tipo:           string(m.Tipo),
		ProductoID:     m.ProductoID,
		CostoUnitario:  m.CostoUnitario,
		Nota:           m.Nota,
		CreatedAt:      fmtFecha(m.CreatedAt),
	}
	if m.MateriaPrima != nil {
		r.MateriaPrima = m.MateriaPrima.Nombre
	}
	return r
}

func pagoToResponse(id uint, monto decimal.Decimal, metodo string, fecha time.Time, nota *string) dto.PagoResponse {
	return dto.PagoResponse{ID: id, Monto: monto, MetodoPago: metodo, Fecha: fmtFecha(fecha), Nota: nota}
}
