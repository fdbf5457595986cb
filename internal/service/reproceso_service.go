package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReprocesoService converts stock of one product into another. Both legs
// are REPROCESO movements that point at the origin product; the destination
// quantity may be lower than the origin (implicit process loss).
type ReprocesoService interface {
	Reprocesar(ctx context.Context, req dto.ReprocesoRequest) (*dto.ReprocesoResponse, error)
}

type reprocesoService struct {
	movimientos repository.MovimientoRepository
	productos   repository.ProductoRepository
	inventario  InventarioService
}

func NewReprocesoService(movimientos repository.MovimientoRepository, productos repository.ProductoRepository, inventario InventarioService) ReprocesoService {
	return &reprocesoService{movimientos: movimientos, productos: productos, inventario: inventario}
}

func (s *reprocesoService) Reprocesar(ctx context.Context, req dto.ReprocesoRequest) (*dto.ReprocesoResponse, error) {
	if req.ProductoOrigenID == req.ProductoDestinoID {
		return nil, apierror.Validation("el producto de origen y el de destino deben ser distintos")
	}
	if req.CantidadOrigen <= 0 || req.CantidadDestino <= 0 {
		return nil, apierror.Validation("las cantidades de reproceso deben ser mayores a cero")
	}
	origen, err := s.productos.FindByID(ctx, req.ProductoOrigenID)
	if err != nil {
		return nil, storeErr(err, "producto", req.ProductoOrigenID)
	}
	destino, err := s.productos.FindByID(ctx, req.ProductoDestinoID)
	if err != nil {
		return nil, storeErr(err, "producto", req.ProductoDestinoID)
	}

	nota := strings.TrimSpace(req.Nota)
	if nota == "" {
		nota = fmt.Sprintf("Reproceso %s -> %s", nombreProducto(origen, origen.ID), nombreProducto(destino, destino.ID))
	}
	origenID := origen.ID

	salida := model.MovimientoInventario{
		ProductoID:       origen.ID,
		Cantidad:         -req.CantidadOrigen,
		Tipo:             model.MovReproceso,
		ProductoOrigenID: &origenID,
		Nota:             nota,
	}
	entrada := model.MovimientoInventario{
		ProductoID:       destino.ID,
		Cantidad:         req.CantidadDestino,
		Tipo:             model.MovReproceso,
		ProductoOrigenID: &origenID,
		Nota:             nota,
	}

	err = runTx(ctx, s.movimientos.DB(), func(tx *gorm.DB) error {
		if err := s.inventario.VerificarStockTx(ctx, tx, []Salida{{ProductoID: origen.ID, Cantidad: req.CantidadOrigen}}); err != nil {
			return err
		}
		if err := s.movimientos.Registrar(ctx, tx, &salida); err != nil {
			return fmt.Errorf("registrar salida de reproceso: %w", err)
		}
		if err := s.movimientos.Registrar(ctx, tx, &entrada); err != nil {
			return fmt.Errorf("registrar entrada de reproceso: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	perdida := req.CantidadOrigen - req.CantidadDestino
	log.Info().
		Uint("origen_id", origen.ID).
		Uint("destino_id", destino.ID).
		Int("cantidad_origen", req.CantidadOrigen).
		Int("cantidad_destino", req.CantidadDestino).
		Int("perdida", perdida).
		Msg("reproceso registrado")

	return &dto.ReprocesoResponse{
		Salida:  movimientoToResponse(&salida),
		Entrada: movimientoToResponse(&entrada),
		Perdida: perdida,
	}, nil
}
