package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialLoadRowRequest línea del saldo de apertura.
type InitialLoadRowRequest struct {
	ProductName string          `json:"product_name" validate:"max=200"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// InitialLoadRequest body para POST /api/hotels/:hotelID/initial-load.
type InitialLoadRequest struct {
	Rows []InitialLoadRowRequest `json:"rows" validate:"required,min=1,max=5000,dive"`
}

// RowIssueDTO fila no cargada.
type RowIssueDTO struct {
	Row         int             `json:"row"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
}

// InitialLoadResponse resumen de la carga inicial.
type InitialLoadResponse struct {
	Loaded        bool          `json:"loaded"`
	MatchedLoaded int           `json:"matched_loaded"`
	Batches       []BatchDTO    `json:"batches"`
	Unmatched     []RowIssueDTO `json:"unmatched"`
	Skipped       []RowIssueDTO `json:"skipped"`
	Invalid       []RowIssueDTO `json:"invalid,omitempty"`
}

// InitialLoadStatusResponse estado de la marca de carga inicial.
type InitialLoadStatusResponse struct {
	Loaded   bool       `json:"loaded"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	LoadedBy string     `json:"loaded_by,omitempty"`
}
