package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación de salida más comunes. El valor es opaco para el libro.
const (
	OperationConsumption = "consumption"
	OperationTransfer    = "transfer"
	OperationWaste       = "waste"
)

// ConsumptionRecord una fila por lote tocado en un consumo. Inmutable.
// Todas las filas de un mismo consumo comparten Reference, generada por el libro para ese consumo.
type ConsumptionRecord struct {
	ID            int64
	BatchID       int64
	Quantity      decimal.Decimal
	OperationType string
	Reference     string
	OccurredAt    time.Time
}
