package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// errNothingLoaded fuerza el Rollback cuando ninguna fila se cargó, para que la marca quede sin fijar.
var errNothingLoaded = errors.New("carga inicial sin filas cargadas")

// InitialLoadUseCase permite exactamente una carga de saldos de apertura por hotel.
type InitialLoadUseCase struct {
	txRunner TxRunner
	flags    repository.InitialLoadRepository
	now      func() time.Time
}

// NewInitialLoadUseCase construye el caso de uso. flags se usa solo para lecturas fuera de transacción.
func NewInitialLoadUseCase(txRunner TxRunner, flags repository.InitialLoadRepository) *InitialLoadUseCase {
	return &InitialLoadUseCase{txRunner: txRunner, flags: flags, now: time.Now}
}

// InitialLoadRow una línea del saldo de apertura tal como la escribió el usuario.
type InitialLoadRow struct {
	Line        int // fila en el archivo de origen; 0 = usar la posición
	ProductName string
	Quantity    decimal.Decimal
}

// InitialLoadInput carga completa de un hotel.
type InitialLoadInput struct {
	HotelID int64
	Actor   string
	Rows    []InitialLoadRow
}

// RowIssue fila no cargada y el motivo.
type RowIssue struct {
	Row         int // fila de origen o posición 1-based en la entrada
	ProductName string
	Quantity    decimal.Decimal
	Reason      string
}

// Motivos de fila no cargada.
const (
	ReasonUnmatched       = "producto no encontrado en el catálogo"
	ReasonInvalidQuantity = "cantidad no positiva o con más de 4 decimales"
)

// InitialLoadResult resumen de la carga.
type InitialLoadResult struct {
	MatchedLoaded int
	Batches       []*entity.Batch
	Unmatched     []RowIssue
	Skipped       []RowIssue
	Loaded        bool // true si la marca del hotel quedó fijada por esta llamada
}

// Submit ejecuta la carga inicial. La marca se fija con compare-and-set como primera sentencia de la
// transacción: una segunda llamada (o una concurrente) recibe ErrAlreadyLoaded sin crear lotes.
// Si ninguna fila se carga, la transacción se revierte y la marca sigue libre.
func (uc *InitialLoadUseCase) Submit(ctx context.Context, in InitialLoadInput) (*InitialLoadResult, error) {
	if in.HotelID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var result *InitialLoadResult
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		now := uc.now()
		result = &InitialLoadResult{}
		ok, err := repos.InitialLoads.TryMarkLoaded(ctx, in.HotelID, in.Actor, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyLoaded
		}

		for i, row := range in.Rows {
			name := entity.NormalizeProductName(row.ProductName)
			line := row.Line
			if line == 0 {
				line = i + 1
			}
			issue := RowIssue{Row: line, ProductName: row.ProductName, Quantity: row.Quantity}
			var product *entity.Product
			if name != "" {
				p, err := repos.Products.GetByName(ctx, name)
				if err != nil {
					return err
				}
				product = p
			}
			if product == nil {
				issue.Reason = ReasonUnmatched
				result.Unmatched = append(result.Unmatched, issue)
				continue
			}
			if !entity.ValidQuantity(row.Quantity) {
				issue.Reason = ReasonInvalidQuantity
				result.Skipped = append(result.Skipped, issue)
				continue
			}
			if _, err := repos.Stock.GetForUpdate(ctx, in.HotelID, product.ID); err != nil {
				return err
			}
			batch, err := recordInbound(ctx, repos, inboundLine{
				hotelID:    in.HotelID,
				productID:  product.ID,
				quantity:   row.Quantity,
				sourceType: entity.SourceInitialLoad,
				sourceRef:  entity.SourceInitialLoad,
				receivedAt: now,
				actor:      in.Actor,
				note:       "carga inicial",
			}, now)
			if err != nil {
				return err
			}
			result.Batches = append(result.Batches, batch)
			result.MatchedLoaded++
		}
		if result.MatchedLoaded == 0 {
			return errNothingLoaded
		}
		result.Loaded = true
		return nil
	})
	if errors.Is(err, errNothingLoaded) {
		result.Batches = nil
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Status devuelve la marca de carga inicial del hotel.
func (uc *InitialLoadUseCase) Status(ctx context.Context, hotelID int64) (*entity.InitialLoadFlag, error) {
	if hotelID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.flags.Get(ctx, hotelID)
}
