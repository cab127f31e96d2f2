package excel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/hotel-inventory/internal/infrastructure/excel"
)

// buildSheet arma un .xlsx en memoria con las filas indicadas (la primera es el encabezado).
func buildSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf
}

func TestParseInitialLoad_FilasValidas(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Producto", "Cantidad"},
		{"Toallas", 40},
		{"  Jabón  ", "12,5"},
	})

	sheet, err := excel.ParseInitialLoad(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Empty(t, sheet.Invalid)

	assert.Equal(t, 2, sheet.Rows[0].Line)
	assert.Equal(t, "Toallas", sheet.Rows[0].ProductName)
	assert.Equal(t, "40", sheet.Rows[0].Quantity.String())
	assert.Equal(t, 3, sheet.Rows[1].Line)
	assert.Equal(t, "Jabón", sheet.Rows[1].ProductName)
	assert.Equal(t, "12.5", sheet.Rows[1].Quantity.String())
}

func TestParseInitialLoad_CantidadIlegibleSeReporta(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Producto", "Cantidad"},
		{"Toallas", "muchas"},
		{"", ""},
		{"Champú", 3},
	})

	sheet, err := excel.ParseInitialLoad(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	require.Len(t, sheet.Invalid, 1)
	assert.Equal(t, 2, sheet.Invalid[0].Row)
	assert.Equal(t, excel.ReasonUnreadableQuantity, sheet.Invalid[0].Reason)
	assert.Equal(t, 4, sheet.Rows[0].Line)
}

func TestParseInitialLoad_SoloEncabezado(t *testing.T) {
	buf := buildSheet(t, [][]any{{"Producto", "Cantidad"}})

	_, err := excel.ParseInitialLoad(buf)
	assert.Error(t, err)
}

func TestParseInitialLoad_ArchivoNoExcel(t *testing.T) {
	_, err := excel.ParseInitialLoad(bytes.NewBufferString("no soy un xlsx"))
	assert.Error(t, err)
}
