package table

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX_Basic(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Latitude", "Longitude"},
			{"28.6", "77.2"},
		},
	})

	tbl, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Latitude", "Longitude"}, tbl.Header())
	assert.Equal(t, "77.2", tbl.Value(0, "Longitude"))
}

func TestReadXLSX_SheetNotFound(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Data": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSX_IndexOutOfRange(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Data": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestSaveLoad_XLSXRoundTrip(t *testing.T) {
	tbl, err := New([]string{"Dependent_Variable", "R_squared"}, [][]string{{"tfp_lp", "0.25"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, Save(path, tbl))

	got, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, tbl.Header(), got.Header())
	assert.Equal(t, "tfp_lp", got.Value(0, "Dependent_Variable"))

	v, ok := ParseFloat(got.Value(0, "R_squared"))
	require.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-12)
}
