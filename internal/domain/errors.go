package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio del libro FIFO (sin dependencias de infraestructura).
var (
	ErrNotFound                  = errors.New("recurso no encontrado")
	ErrInvalidInput              = errors.New("entrada inválida")
	ErrInvalidQuantity           = errors.New("la cantidad debe ser mayor que cero y tener a lo sumo 4 decimales")
	ErrInsufficientStock         = errors.New("stock insuficiente")
	ErrInsufficientBatchQuantity = errors.New("el lote no tiene cantidad suficiente")
	ErrAlreadyLoaded             = errors.New("la carga inicial ya fue realizada para este hotel")
	ErrProductNotFound           = errors.New("producto no encontrado")
	ErrPersistence               = errors.New("fallo de persistencia")
)

// InsufficientStockError expone el faltante real de un consumo rechazado.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	HotelID   int64
	ProductID int64
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d en hotel %d: solicitado %s, disponible %s",
		e.ProductID, e.HotelID, e.Requested.String(), e.Available.String())
}

// Shortfall cantidad que falta para cubrir la solicitud.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Persistence envuelve un error del almacenamiento conservando la causa original.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
