package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	fifo "github.com/jhoicas/hotel-inventory/internal/domain/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
	"github.com/shopspring/decimal"
)

// LedgerUseCase registra entradas y consumos FIFO de forma transaccional.
// Cada operación bloquea la fila agregada (hotel, producto) durante toda la transacción,
// lo que serializa los consumos concurrentes sobre la misma clave.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, productRepo repository.ProductRepository, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		log:         log,
		now:         time.Now,
	}
}

// InboundInput entrada de un lote de stock.
type InboundInput struct {
	HotelID    int64
	ProductID  int64
	Quantity   decimal.Decimal
	UnitCost   *decimal.Decimal
	SourceType string // supply (por defecto) o initial_load
	SourceRef  string
	ReceivedAt *time.Time // nil = ahora
	Actor      string
	Note       string
}

// InboundResult lote creado y cantidad agregada resultante.
type InboundResult struct {
	Batch        *entity.Batch
	AggregateQty decimal.Decimal
}

// ConsumeInput solicitud de salida de stock.
type ConsumeInput struct {
	HotelID       int64
	ProductID     int64
	Quantity      decimal.Decimal
	OperationType string // consumption por defecto
	Reference     string // referencia externa (pedido, traslado); opaca y puede repetirse
	Actor         string
	Note          string
}

// ConsumeResult explica de qué lotes salió el consumo.
type ConsumeResult struct {
	Reference       string // identificador propio de este consumo; agrupa sus filas de asignación
	CallerReference string
	Requested       decimal.Decimal
	Allocations     []*entity.ConsumptionRecord
	Reconciliation  *entity.Batch // lote correctivo, si hizo falta
	AggregateQty    decimal.Decimal
	CostOfGoods     decimal.Decimal
}

// RecordInbound crea un lote y actualiza agregado y log de movimientos en la misma transacción.
func (uc *LedgerUseCase) RecordInbound(ctx context.Context, in InboundInput) (*InboundResult, error) {
	if !entity.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if in.SourceType == "" {
		in.SourceType = entity.SourceSupply
	}
	if in.SourceType != entity.SourceSupply && in.SourceType != entity.SourceInitialLoad {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && (in.UnitCost.IsNegative() || !entity.FitsScale(*in.UnitCost)) {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}

	now := uc.now()
	receivedAt := now
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}

	var out InboundResult
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		if _, err := repos.Stock.GetForUpdate(ctx, in.HotelID, in.ProductID); err != nil {
			return err
		}
		batch, err := recordInbound(ctx, repos, inboundLine{
			hotelID:    in.HotelID,
			productID:  in.ProductID,
			quantity:   in.Quantity,
			unitCost:   in.UnitCost,
			sourceType: in.SourceType,
			sourceRef:  in.SourceRef,
			receivedAt: receivedAt,
			actor:      in.Actor,
			note:       in.Note,
		}, now)
		if err != nil {
			return err
		}
		agg, err := repos.Stock.Get(ctx, in.HotelID, in.ProductID)
		if err != nil {
			return err
		}
		out = InboundResult{Batch: batch, AggregateQty: agg.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Consume descuenta stock del lote más antiguo al más nuevo. Todo o nada:
// conciliación, decrementos de lotes, agregado y movimiento se confirman juntos.
func (uc *LedgerUseCase) Consume(ctx context.Context, in ConsumeInput) (*ConsumeResult, error) {
	if !entity.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if err := uc.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if in.OperationType == "" {
		in.OperationType = entity.OperationConsumption
	}
	reference := uuid.New().String()

	var out *ConsumeResult
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		now := uc.now()
		// Bloquea la fila agregada (SELECT FOR UPDATE) antes de leer disponibilidad.
		agg, err := repos.Stock.GetForUpdate(ctx, in.HotelID, in.ProductID)
		if err != nil {
			return err
		}
		minted, err := uc.reconcile(ctx, repos, agg, now)
		if err != nil {
			return err
		}
		batches, err := repos.Batches.ListActiveOldestFirst(ctx, in.HotelID, in.ProductID)
		if err != nil {
			return err
		}
		plan, err := fifo.PlanAllocation(batches, in.Quantity)
		if err != nil {
			var short *domain.InsufficientStockError
			if errors.As(err, &short) {
				short.HotelID, short.ProductID = in.HotelID, in.ProductID
			}
			return err
		}

		records := make([]*entity.ConsumptionRecord, 0, len(plan))
		for _, a := range plan {
			if err := a.Batch.MarkConsumed(a.Quantity); err != nil {
				return err
			}
			if err := repos.Batches.UpdateConsumption(ctx, a.Batch); err != nil {
				return err
			}
			rec := &entity.ConsumptionRecord{
				BatchID:       a.Batch.ID,
				Quantity:      a.Quantity,
				OperationType: in.OperationType,
				Reference:     reference,
				OccurredAt:    now,
			}
			if err := repos.Consumptions.Create(ctx, rec); err != nil {
				return err
			}
			records = append(records, rec)
		}

		if err := repos.Stock.Decrement(ctx, in.HotelID, in.ProductID, in.Quantity, now); err != nil {
			return err
		}
		if err := repos.Movements.Create(ctx, &entity.MovementLogEntry{
			HotelID:        in.HotelID,
			ProductID:      in.ProductID,
			Direction:      entity.DirectionOut,
			Quantity:       in.Quantity,
			OperationType:  in.OperationType,
			Actor:          in.Actor,
			Reference:      in.Reference,
			ConsumptionRef: reference,
			Note:           movementNote(in.Note, minted),
			OccurredAt:     now,
		}); err != nil {
			return err
		}
		after, err := repos.Stock.Get(ctx, in.HotelID, in.ProductID)
		if err != nil {
			return err
		}
		out = &ConsumeResult{
			Reference:       reference,
			CallerReference: in.Reference,
			Requested:       in.Quantity,
			Allocations:     records,
			Reconciliation:  minted,
			AggregateQty:    after.Quantity,
			CostOfGoods:     fifo.CostOfGoods(plan),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Reconciliation != nil {
		uc.log.Warn().
			Int64("hotel_id", in.HotelID).
			Int64("product_id", in.ProductID).
			Int64("batch_id", out.Reconciliation.ID).
			Str("gap", out.Reconciliation.Inbound.String()).
			Msg("deriva entre agregado y lotes: lote correctivo creado")
	}
	return out, nil
}

// reconcile compara el agregado con la suma de lotes activos y, si el agregado muestra más stock,
// crea un lote correctivo fechado ahora por la diferencia. Nunca reduce ni borra lotes.
func (uc *LedgerUseCase) reconcile(ctx context.Context, repos TxRepos, agg *entity.AggregateStock, now time.Time) (*entity.Batch, error) {
	batches, err := repos.Batches.ListActiveOldestFirst(ctx, agg.HotelID, agg.ProductID)
	if err != nil {
		return nil, err
	}
	gap := fifo.ReconciliationGap(agg.Quantity, batches)
	if !gap.IsPositive() {
		return nil, nil
	}
	batch, err := entity.NewBatch(agg.HotelID, agg.ProductID, gap, entity.SourceReconciliation, "", now)
	if err != nil {
		return nil, err
	}
	batch.CreatedAt = now
	if err := repos.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// movementNote agrega al movimiento de salida la constancia del lote correctivo, si lo hubo.
func movementNote(note string, minted *entity.Batch) string {
	if minted == nil {
		return note
	}
	heal := fmt.Sprintf("conciliación: lote correctivo %d por %s", minted.ID, minted.Inbound.String())
	if note == "" {
		return heal
	}
	return note + "; " + heal
}

func (uc *LedgerUseCase) requireProduct(ctx context.Context, productID int64) error {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	return nil
}

// inboundLine datos de un lote a registrar dentro de una transacción abierta.
type inboundLine struct {
	hotelID    int64
	productID  int64
	quantity   decimal.Decimal
	unitCost   *decimal.Decimal
	sourceType string
	sourceRef  string
	receivedAt time.Time
	actor      string
	note       string
}

// recordInbound persiste lote, incremento del agregado y movimiento de entrada.
// El llamador ya abrió la transacción y bloqueó la fila agregada.
func recordInbound(ctx context.Context, repos TxRepos, line inboundLine, now time.Time) (*entity.Batch, error) {
	batch, err := entity.NewBatch(line.hotelID, line.productID, line.quantity, line.sourceType, line.sourceRef, line.receivedAt)
	if err != nil {
		return nil, err
	}
	if line.unitCost != nil {
		batch.UnitCost = *line.unitCost
	}
	batch.CreatedAt = now
	if err := repos.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	if err := repos.Stock.Increment(ctx, line.hotelID, line.productID, line.quantity, now); err != nil {
		return nil, err
	}
	if err := repos.Movements.Create(ctx, &entity.MovementLogEntry{
		HotelID:       line.hotelID,
		ProductID:     line.productID,
		Direction:     entity.DirectionIn,
		Quantity:      line.quantity,
		OperationType: line.sourceType,
		Actor:         line.actor,
		Reference:     line.sourceRef,
		Note:          line.note,
		OccurredAt:    now,
	}); err != nil {
		return nil, err
	}
	return batch, nil
}
