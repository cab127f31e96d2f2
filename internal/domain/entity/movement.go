package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// MovementLogEntry registro de auditoría de solo inserción; nunca se modifica ni se borra.
type MovementLogEntry struct {
	ID            int64
	HotelID       int64
	ProductID     int64
	Direction     string
	Quantity      decimal.Decimal // siempre positiva; el signo lo da Direction
	OperationType string
	Actor         string
	Reference     string // referencia externa del llamador
	// ConsumptionRef identificador compartido por las filas de asignación de un consumo (solo salidas).
	ConsumptionRef string
	Note           string
	OccurredAt     time.Time
}
