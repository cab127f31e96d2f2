package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateStock vista desnormalizada de la cantidad actual por (hotel, producto) para lecturas O(1).
// Objetivo: Quantity == suma de Remaining de los lotes activos; puede arrastrar deriva heredada.
type AggregateStock struct {
	HotelID   int64
	ProductID int64
	Quantity  decimal.Decimal
	LastInAt  *time.Time
	LastOutAt *time.Time
	UpdatedAt time.Time
}
