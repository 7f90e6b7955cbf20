package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/exporter-premium/internal/config"
	"github.com/sells-group/exporter-premium/internal/geo"
	"github.com/sells-group/exporter-premium/internal/regress"
	"github.com/sells-group/exporter-premium/internal/table"
)

// loadInput reads the firm table. When the file cannot be read it prints a
// diagnostic to w and returns ok=false with a nil error, so the command
// exits cleanly without producing output.
func loadInput(ctx context.Context, w io.Writer, path string, in config.InputConfig) (*table.Table, bool) {
	fmt.Fprintf(w, "Loading data from %s\n", path)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "Error: Could not find file '%s'\n", path)
		zap.L().Error("input not found", zap.String("path", path))
		return nil, false
	}

	tbl, err := table.Load(ctx, path, table.Options{
		CSV:  table.CSVOptions{Charset: in.Charset},
		XLSX: table.XLSXOptions{SheetName: in.Sheet},
	})
	if err != nil {
		fmt.Fprintf(w, "Error loading file: %v\n", err)
		zap.L().Error("input unreadable", zap.String("path", path), zap.Error(err))
		return nil, false
	}

	zap.L().Info("loaded input",
		zap.String("path", path),
		zap.Int("rows", tbl.Len()),
		zap.Int("columns", len(tbl.Header())),
	)
	return tbl, true
}

// newEngine builds the proximity engine from the configured reference file,
// or the built-in sets when none is configured.
func newEngine(c *config.Config) (*geo.Engine, error) {
	sets := geo.DefaultReferenceSets()
	if c.Proximity.ReferenceFile != "" {
		loaded, err := geo.LoadReferenceSets(c.Proximity.ReferenceFile)
		if err != nil {
			return nil, eris.Wrap(err, "load reference sets")
		}
		sets = loaded
	}
	return geo.NewEngine(sets, geo.WithConcurrency(c.Proximity.Concurrency))
}

// newRunner builds the regression runner from config.
func newRunner(c *config.Config) *regress.Runner {
	return regress.NewRunner(
		c.Regression.DependentVariables,
		regress.Columns{
			Exporter:   c.Input.ExporterColumn,
			Industry:   c.Input.IndustryColumn,
			Employment: c.Input.EmploymentColumn,
		},
		regress.Options{
			LogFloor:             c.Regression.LogFloor,
			FillMissingWithFloor: c.Regression.FillMissingWithFloor,
		},
		c.Regression.Concurrency,
	)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
