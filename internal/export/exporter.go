// Package export writes layouts to disk as JSON, CSV, Excel and Parquet files, with a
// signed manifest per layout directory.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"reshape/internal/logger"
	"reshape/internal/models"
	"reshape/pkg/metadata"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
	FormatParquet = "parquet"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Exporter writes tables under BasePath/<layout>/.
type Exporter struct {
	log      *logger.Logger
	now      func() time.Time
	BasePath string
	RunID    string
	Formats  []string
	Pretty   bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the clock used for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// New creates an exporter. With no formats it writes JSON.
func New(basePath, runID string, formats []string, pretty bool, opts ...Option) *Exporter {
	if len(formats) == 0 {
		formats = []string{FormatJSON}
	}

	e := &Exporter{
		BasePath: basePath,
		RunID:    runID,
		Formats:  formats,
		Pretty:   pretty,
		now:      time.Now,
		log:      logger.Discard(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Dir returns the output directory of a layout.
func (e *Exporter) Dir(layout string) string {
	return filepath.Join(e.BasePath, layout)
}

// Export writes every table of a layout in every configured format, then the manifest.
// It returns the paths written, manifest included.
func (e *Exporter) Export(layout string, tables []models.Table) ([]string, error) {
	dir := e.Dir(layout)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	manifest := metadata.New(e.RunID, layout, e.now())

	var written []string

	add := func(name, table, format string, records int) error {
		if err := manifest.Add(dir, name, table, format, records); err != nil {
			return err
		}

		written = append(written, filepath.Join(dir, name))

		return nil
	}

	for _, format := range e.Formats {
		switch format {
		case FormatJSON, FormatCSV:
			for _, t := range tables {
				name := t.Name + "." + format
				if err := e.writeTable(filepath.Join(dir, name), format, t); err != nil {
					return written, fmt.Errorf("failed to export %s/%s: %w", layout, name, err)
				}

				if err := add(name, t.Name, format, t.Len()); err != nil {
					return written, err
				}
			}
		case FormatXLSX:
			name := layout + ".xlsx"
			if err := writeWorkbook(filepath.Join(dir, name), tables); err != nil {
				return written, fmt.Errorf("failed to export %s/%s: %w", layout, name, err)
			}

			total := 0
			for _, t := range tables {
				total += t.Len()
			}

			if err := add(name, "", format, total); err != nil {
				return written, err
			}
		case FormatParquet:
			for _, t := range tables {
				name := t.Name + ".parquet"

				ok, err := writeParquet(filepath.Join(dir, name), t)
				if err != nil {
					return written, fmt.Errorf("failed to export %s/%s: %w", layout, name, err)
				}

				if !ok {
					continue
				}

				if err := add(name, t.Name, format, t.Len()); err != nil {
					return written, err
				}
			}
		default:
			return written, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		}
	}

	path, err := manifest.Sign(dir)
	if err != nil {
		return written, err
	}

	written = append(written, path)

	e.log.Info("exported layout", "layout", layout, "dir", dir, "files", len(written))

	return written, nil
}

// ExportDocuments writes each document collection as JSON, then the manifest.
func (e *Exporter) ExportDocuments(docs *models.DocumentSet) ([]string, error) {
	tables := []models.Table{
		models.NewTable(models.CollectionUsers, docs.Users),
		models.NewTable(models.CollectionProducts, docs.Products),
		models.NewTable(models.CollectionOrders, docs.Orders),
	}

	docExporter := New(e.BasePath, e.RunID, []string{FormatJSON}, e.Pretty, WithClock(e.now), WithLogger(e.log))

	return docExporter.Export(models.LayoutDocument, tables)
}

func (e *Exporter) writeTable(path, format string, t models.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(f)
		if e.Pretty {
			enc.SetIndent("", "  ")
		}

		records := t.Records
		if t.Len() == 0 {
			records = []struct{}{}
		}

		err = enc.Encode(records)
	case FormatCSV:
		err = writeCSV(f, t)
	}

	if err != nil {
		return err
	}

	return f.Close()
}

func writeCSV(f *os.File, t models.Table) error {
	w := csv.NewWriter(f)

	if err := w.Write(t.Columns()); err != nil {
		return err
	}

	for _, row := range t.Rows() {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = FormatValue(v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// FormatValue renders a cell as text. Nil is empty; midnight UTC times render as dates.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Equal(x.Truncate(24*time.Hour)) && x.Location() == time.UTC {
			return x.Format(time.DateOnly)
		}

		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func writeWorkbook(path string, tables []models.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := t.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		sw, err := f.NewStreamWriter(sheet)
		if err != nil {
			return err
		}

		if err := sw.SetRow("A1", toCells(t.Columns())); err != nil {
			return err
		}

		for r, row := range t.Rows() {
			cells := make([]any, len(row))
			for c, v := range row {
				if tm, ok := v.(time.Time); ok {
					cells[c] = FormatValue(tm)
					continue
				}

				cells[c] = v
			}

			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}

			if err := sw.SetRow(cell, cells); err != nil {
				return err
			}
		}

		if err := sw.Flush(); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}

	return cells
}

// writeParquet writes fact tables; other tables are skipped and report false.
func writeParquet(path string, t models.Table) (bool, error) {
	switch rows := t.Records.(type) {
	case []models.StarFactOrder:
		return true, parquet.WriteFile(path, rows)
	case []models.SnowFactOrder:
		return true, parquet.WriteFile(path, rows)
	default:
		return false, nil
	}
}
