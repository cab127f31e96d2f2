package entity

import "time"

// InitialLoadFlag marca única por hotel. Solo existe la transición no cargado -> cargado.
type InitialLoadFlag struct {
	HotelID  int64
	Loaded   bool
	LoadedAt *time.Time
	LoadedBy string
}
