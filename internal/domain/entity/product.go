package entity

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Product entrada del catálogo. El libro solo la lee (por ID o por nombre exacto).
type Product struct {
	ID               int64
	Name             string
	Unit             string
	ReorderThreshold decimal.Decimal
}

// NormalizeProductName recorta espacios y pasa a forma NFC, para que "Jabón" escrito con tilde
// compuesta o combinada sea el mismo nombre. No cambia mayúsculas.
func NormalizeProductName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ProductNameKey clave de comparación sin distinguir mayúsculas, equivalente a lower() de PostgreSQL
// (minúscula carácter a carácter, sin plegados como "ß" -> "ss").
func ProductNameKey(name string) string {
	return strings.ToLower(NormalizeProductName(name))
}
