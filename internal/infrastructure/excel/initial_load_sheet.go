// Package excel lee hojas de saldos de apertura (.xlsx) para la carga inicial.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// InitialLoadSheet contenido útil de la hoja: filas a cargar y filas ilegibles.
type InitialLoadSheet struct {
	Rows    []inventory.InitialLoadRow
	Invalid []inventory.RowIssue
}

// ReasonUnreadableQuantity motivo de fila con cantidad no numérica.
const ReasonUnreadableQuantity = "cantidad ilegible"

// ParseInitialLoad lee la primera hoja: columna A nombre del producto, columna B cantidad.
// La fila 1 es encabezado. Las filas totalmente vacías se ignoran; las que tienen datos pero
// una cantidad ilegible se reportan en Invalid, nunca se descartan en silencio.
func ParseInitialLoad(r io.Reader) (*InitialLoadSheet, error) {
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
	if len(rows) < 2 {
		return nil, fmt.Errorf("el archivo debe tener encabezado y al menos una fila de datos")
	}

	out := &InitialLoadSheet{}
	for i, row := range rows[1:] {
		line := i + 2 // número de fila en Excel (encabezado = 1)
		name, rawQty := cell(row, 0), cell(row, 1)
		if name == "" && rawQty == "" {
			continue
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(rawQty, ",", "."))
		if err != nil {
			out.Invalid = append(out.Invalid, inventory.RowIssue{
				Row:         line,
				ProductName: name,
				Reason:      ReasonUnreadableQuantity,
			})
			continue
		}
		out.Rows = append(out.Rows, inventory.InitialLoadRow{Line: line, ProductName: name, Quantity: qty})
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
