package memory

import (
	"errors"

	"github.com/jhoicas/hotel-inventory/internal/domain"
)

var errBatchNotFound = domain.Persistence("update batch", errors.New("lote inexistente"))
