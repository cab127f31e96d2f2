package entity

import (
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/shopspring/decimal"
)

// Orígenes de un lote.
const (
	SourceSupply         = "supply"         // recepción de proveedor
	SourceInitialLoad    = "initial_load"   // saldo de apertura
	SourceReconciliation = "reconciliation" // lote correctivo del guardián de conciliación
)

// QuantityScale decimales que admite el almacenamiento (NUMERIC(18,4)).
const QuantityScale = 4

// ValidQuantity indica si q es positiva y cabe en QuantityScale decimales sin redondeo.
func ValidQuantity(q decimal.Decimal) bool {
	return q.IsPositive() && FitsScale(q)
}

// FitsScale indica si q no tiene más de QuantityScale decimales significativos.
func FitsScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// Batch representa un lote de entrada de un producto en un hotel, consumido en orden FIFO.
// Invariante: Inbound = Remaining + Consumed, Remaining >= 0. Depleted es permanente.
type Batch struct {
	ID         int64
	HotelID    int64
	ProductID  int64
	Inbound    decimal.Decimal
	Remaining  decimal.Decimal
	Consumed   decimal.Decimal
	UnitCost   decimal.Decimal
	ReceivedAt time.Time // clave de orden FIFO; empate por ID
	SourceType string
	SourceRef  string
	Depleted   bool
	CreatedAt  time.Time
}

// NewBatch construye un lote nuevo sin consumir. quantity debe ser > 0 y de a lo sumo QuantityScale decimales.
func NewBatch(hotelID, productID int64, quantity decimal.Decimal, sourceType, sourceRef string, receivedAt time.Time) (*Batch, error) {
	if !ValidQuantity(quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if !ValidSourceType(sourceType) {
		return nil, domain.ErrInvalidInput
	}
	return &Batch{
		HotelID:    hotelID,
		ProductID:  productID,
		Inbound:    quantity,
		Remaining:  quantity,
		Consumed:   decimal.Zero,
		UnitCost:   decimal.Zero,
		ReceivedAt: receivedAt,
		SourceType: sourceType,
		SourceRef:  sourceRef,
		CreatedAt:  time.Now(),
	}, nil
}

// ValidSourceType indica si s es un origen de lote conocido.
func ValidSourceType(s string) bool {
	switch s {
	case SourceSupply, SourceInitialLoad, SourceReconciliation:
		return true
	}
	return false
}

// MarkConsumed descuenta amount del saldo del lote.
// Falla con ErrInsufficientBatchQuantity si amount supera Remaining; en ese caso el lote no cambia.
func (b *Batch) MarkConsumed(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if amount.GreaterThan(b.Remaining) {
		return domain.ErrInsufficientBatchQuantity
	}
	b.Remaining = b.Remaining.Sub(amount)
	b.Consumed = b.Consumed.Add(amount)
	if b.Remaining.IsZero() {
		b.Depleted = true
	}
	return nil
}

// Balanced verifica la conservación de cantidad del lote.
func (b *Batch) Balanced() bool {
	return b.Inbound.Equal(b.Remaining.Add(b.Consumed)) && !b.Remaining.IsNegative()
}
