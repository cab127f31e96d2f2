package dto

import (
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InboundRequest body para POST /api/hotels/:hotelID/inventory/inbound.
type InboundRequest struct {
	ProductID  int64            `json:"product_id" validate:"required,gt=0"`
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceType string           `json:"source_type,omitempty" validate:"omitempty,oneof=supply initial_load"`
	SourceRef  string           `json:"source_ref,omitempty" validate:"max=120"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
	Note       string           `json:"note,omitempty" validate:"max=500"`
}

// ConsumeRequest body para POST /api/hotels/:hotelID/inventory/consume.
type ConsumeRequest struct {
	ProductID     int64           `json:"product_id" validate:"required,gt=0"`
	Quantity      decimal.Decimal `json:"quantity"`
	OperationType string          `json:"operation_type,omitempty" validate:"omitempty,oneof=consumption transfer waste"`
	Reference     string          `json:"reference,omitempty" validate:"max=120"`
	Note          string          `json:"note,omitempty" validate:"max=500"`
}

// BatchDTO lote en respuestas.
type BatchDTO struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	Inbound    decimal.Decimal `json:"inbound_qty"`
	Remaining  decimal.Decimal `json:"remaining_qty"`
	Consumed   decimal.Decimal `json:"consumed_qty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReceivedAt time.Time       `json:"received_at"`
	SourceType string          `json:"source_type"`
	SourceRef  string          `json:"source_ref,omitempty"`
	Depleted   bool            `json:"is_depleted"`
}

// FromBatch convierte la entidad a DTO.
func FromBatch(b *entity.Batch) BatchDTO {
	return BatchDTO{
		ID:         b.ID,
		ProductID:  b.ProductID,
		Inbound:    b.Inbound,
		Remaining:  b.Remaining,
		Consumed:   b.Consumed,
		ReceivedAt: b.ReceivedAt,
		SourceType: b.SourceType,
		SourceRef:  b.SourceRef,
		UnitCost:   b.UnitCost,
		Depleted:   b.Depleted,
	}
}

// FromBatches convierte una lista de lotes.
func FromBatches(list []*entity.Batch) []BatchDTO {
	out := make([]BatchDTO, 0, len(list))
	for _, b := range list {
		out = append(out, FromBatch(b))
	}
	return out
}

// InboundResponse resultado de una entrada.
type InboundResponse struct {
	Batch        BatchDTO        `json:"batch"`
	AggregateQty decimal.Decimal `json:"current_qty"`
}

// AllocationDTO porción de un consumo tomada de un lote.
type AllocationDTO struct {
	RecordID      int64            `json:"record_id"`
	BatchID       int64            `json:"batch_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	OperationType string           `json:"operation_type"`
	OccurredAt    time.Time        `json:"occurred_at"`
	BatchReceived *time.Time       `json:"batch_received_at,omitempty"`
	BatchSource   string           `json:"batch_source_type,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
}

// FromRecord convierte un registro de consumo; batch puede ser nil.
func FromRecord(r *entity.ConsumptionRecord, batch *entity.Batch) AllocationDTO {
	out := AllocationDTO{
		RecordID:      r.ID,
		BatchID:       r.BatchID,
		Quantity:      r.Quantity,
		OperationType: r.OperationType,
		OccurredAt:    r.OccurredAt,
	}
	if batch != nil {
		received := batch.ReceivedAt
		out.BatchReceived = &received
		out.BatchSource = batch.SourceType
		cost := batch.UnitCost
		out.UnitCost = &cost
	}
	return out
}

// ConsumeResponse resultado de un consumo FIFO.
// Reference identifica este consumo (GET /consumptions/{reference}); CallerReference es la enviada por el llamador.
type ConsumeResponse struct {
	Reference       string          `json:"reference"`
	CallerReference string          `json:"caller_reference,omitempty"`
	Requested       decimal.Decimal `json:"requested_qty"`
	Allocations     []AllocationDTO `json:"allocations"`
	Reconciliation  *BatchDTO       `json:"reconciliation_batch,omitempty"`
	AggregateQty    decimal.Decimal `json:"current_qty"`
	CostOfGoods     decimal.Decimal `json:"cost_of_goods"`
}

// StockDTO cantidad agregada de un producto.
type StockDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"current_qty"`
	LastInAt  *time.Time      `json:"last_in_at,omitempty"`
	LastOutAt *time.Time      `json:"last_out_at,omitempty"`
}

// FromAggregate convierte el agregado a DTO.
func FromAggregate(a *entity.AggregateStock) StockDTO {
	return StockDTO{ProductID: a.ProductID, Quantity: a.Quantity, LastInAt: a.LastInAt, LastOutAt: a.LastOutAt}
}

// MovementDTO entrada del historial de movimientos.
type MovementDTO struct {
	ID            int64           `json:"id"`
	Direction     string          `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	OperationType string          `json:"operation_type"`
	Actor         string          `json:"actor,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	// ConsumptionRef permite pasar de una salida a su explicación por lote.
	ConsumptionRef string    `json:"consumption_ref,omitempty"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// FromMovements convierte el historial.
func FromMovements(list []*entity.MovementLogEntry) []MovementDTO {
	out := make([]MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MovementDTO{
			ID:             m.ID,
			Direction:      m.Direction,
			Quantity:       m.Quantity,
			OperationType:  m.OperationType,
			Actor:          m.Actor,
			Reference:      m.Reference,
			ConsumptionRef: m.ConsumptionRef,
			Note:           m.Note,
			OccurredAt:     m.OccurredAt,
		})
	}
	return out
}

// DriftDTO diferencia entre agregado y libro de lotes.
type DriftDTO struct {
	ProductID    int64           `json:"product_id"`
	AggregateQty decimal.Decimal `json:"current_qty"`
	LedgerQty    decimal.Decimal `json:"ledger_qty"`
	Gap          decimal.Decimal `json:"gap"`
}
