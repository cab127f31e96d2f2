package excel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventory/internal/infrastructure/excel"
)

func TestParseCatalog(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Nombre", "Unidad", "Umbral"},
		{"Toallas", "", 10},
		{"Detergente", "litro", "2,5"},
		{"TOALLAS", "unidad", 1},
		{"Café", "kg", "mucho"},
	})

	sheet, err := excel.ParseCatalog(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Products, 2)
	assert.Equal(t, "Toallas", sheet.Products[0].Name)
	assert.Equal(t, excel.DefaultUnit, sheet.Products[0].Unit)
	assert.Equal(t, "10", sheet.Products[0].ReorderThreshold.String())
	assert.Equal(t, "litro", sheet.Products[1].Unit)
	assert.Equal(t, "2.5", sheet.Products[1].ReorderThreshold.String())

	require.Len(t, sheet.Invalid, 2)
	assert.Equal(t, 4, sheet.Invalid[0].Row)
	assert.Equal(t, 5, sheet.Invalid[1].Row)
}
