package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DefaultUnit unidad cuando la columna B viene vacía.
const DefaultUnit = "unidad"

// CatalogSheet productos leídos del archivo de catálogo.
type CatalogSheet struct {
	Products []entity.Product
	Invalid  []inventory.RowIssue
}

// ParseCatalog lee la primera hoja: A nombre, B unidad, C umbral de reposición (opcional).
// Los nombres repetidos (sin distinguir mayúsculas) se reportan; gana la primera aparición.
func ParseCatalog(r io.Reader) (*CatalogSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("leer excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("el archivo no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer filas: %w", err)
	}

	out := &CatalogSheet{}
	seen := make(map[string]struct{})
	for i := 1; i < len(rows); i++ {
		row, line := rows[i], i+1
		name := entity.NormalizeProductName(cell(row, 0))
		if name == "" {
			continue
		}
		key := entity.ProductNameKey(name)
		if _, dup := seen[key]; dup {
			out.Invalid = append(out.Invalid, inventory.RowIssue{Row: line, ProductName: name, Reason: "nombre repetido"})
			continue
		}
		unit := cell(row, 1)
		if unit == "" {
			unit = DefaultUnit
		}
		threshold := decimal.Zero
		if raw := cell(row, 2); raw != "" {
			threshold, err = decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
			if err != nil || threshold.IsNegative() {
				out.Invalid = append(out.Invalid, inventory.RowIssue{Row: line, ProductName: name, Reason: "umbral ilegible"})
				continue
			}
		}
		seen[key] = struct{}{}
		out.Products = append(out.Products, entity.Product{Name: name, Unit: unit, ReorderThreshold: threshold})
	}
	return out, nil
}
