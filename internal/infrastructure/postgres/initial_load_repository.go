package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
)

var _ repository.InitialLoadRepository = (*InitialLoadRepo)(nil)

// InitialLoadRepo marca de carga inicial por hotel.
type InitialLoadRepo struct {
	q Querier
}

// NewInitialLoadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInitialLoadRepository(q Querier) *InitialLoadRepo {
	return &InitialLoadRepo{q: q}
}

func (r *InitialLoadRepo) Get(ctx context.Context, hotelID int64) (*entity.InitialLoadFlag, error) {
	var f entity.InitialLoadFlag
	var loadedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT hotel_id, loaded, loaded_at, loaded_by FROM initial_load_flags WHERE hotel_id = $1`, hotelID,
	).Scan(&f.HotelID, &f.Loaded, &f.LoadedAt, &loadedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InitialLoadFlag{HotelID: hotelID}, nil
		}
		return nil, domain.Persistence("get initial load flag", err)
	}
	if loadedBy != nil {
		f.LoadedBy = *loadedBy
	}
	return &f, nil
}

// TryMarkLoaded compare-and-set: solo afecta una fila si el hotel no estaba cargado.
// Una segunda transacción concurrente espera el candado del conflicto y luego no afecta filas.
func (r *InitialLoadRepo) TryMarkLoaded(ctx context.Context, hotelID int64, by string, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO initial_load_flags (hotel_id, loaded, loaded_at, loaded_by)
		VALUES ($1, true, $2, $3)
		ON CONFLICT (hotel_id) DO UPDATE
		SET loaded = true, loaded_at = EXCLUDED.loaded_at, loaded_by = EXCLUDED.loaded_by
		WHERE initial_load_flags.loaded = false`,
		hotelID, at, by,
	)
	if err != nil {
		return false, domain.Persistence("mark initial load", err)
	}
	return cmd.RowsAffected() == 1, nil
}
