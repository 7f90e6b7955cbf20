package table

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Options selects codec settings for Load.
type Options struct {
	CSV  CSVOptions
	XLSX XLSXOptions
}

// Load reads a table from path, choosing the codec by file extension:
// .xlsx is read as a workbook, anything else as CSV.
func Load(ctx context.Context, path string, opts Options) (*Table, error) {
	if isXLSX(path) {
		return ReadXLSX(path, opts.XLSX)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	t, err := ReadCSV(ctx, f, opts.CSV)
	if err != nil {
		return nil, eris.Wrapf(err, "table: read %s", path)
	}
	return t, nil
}

// Save writes a table to path as XLSX or CSV by file extension.
func Save(path string, t *Table) error {
	if isXLSX(path) {
		return WriteXLSX(path, "Sheet1", t)
	}
	return writeCSVFile(path, t)
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
