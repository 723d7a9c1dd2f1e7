package core

// loader.go reads reference tables from the master workbook or from CSV.
//
// Both sources go through the same table builder:
//  1. The first non-empty row is the header; header cells are trimmed
//  2. The code and description columns are located by name (case-insensitive)
//  3. Each following row becomes a Record; blank rows and blank codes are skipped
//
// A missing sheet or required column is a warning, not an error: the affected
// table is returned empty so the validator still works and reports "not found".
// Code cells are cleaned of formula wrapping and quotes; description cells are
// only trimmed.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrEmptyFile is returned when the source has no bytes or no rows.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidWorkbook is returned when the source is not a readable xlsx workbook.
	ErrInvalidWorkbook = errors.New("invalid workbook")

	// ErrNoFile is returned when an upload carries no file.
	ErrNoFile = errors.New("no file provided")
)

// rowCheckInterval is how many sheet rows are read between cancellation checks.
const rowCheckInterval = 1024

// LoadWorkbookFile reads the master workbook at path.
func LoadWorkbookFile(path string) (Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tables{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	tables, err := LoadWorkbook(f)
	if err != nil {
		return Tables{}, fmt.Errorf("load workbook %s: %w", path, err)
	}
	return tables, nil
}

// LoadWorkbook reads every registered table from an xlsx workbook.
// Each table is read from the sheet at its registered position.
func LoadWorkbook(r io.Reader) (Tables, error) {
	return LoadWorkbookContext(context.Background(), r)
}

// LoadWorkbookContext is LoadWorkbook with cancellation. ctx is checked while
// the input is read, before the workbook is opened and every
// rowCheckInterval rows of each sheet. Opening the archive itself cannot be
// interrupted.
func LoadWorkbookContext(ctx context.Context, r io.Reader) (Tables, error) {
	data, err := io.ReadAll(ctxReader{ctx: ctx, r: r})
	if err != nil {
		return Tables{}, fmt.Errorf("read workbook: %w", err)
	}
	if len(data) == 0 {
		return Tables{}, ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return Tables{}, err
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Tables{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer wb.Close()

	return readWorkbook(ctx, wb, All())
}

// readWorkbook builds one table per definition from the workbook's sheets.
func readWorkbook(ctx context.Context, wb *excelize.File, defs []TableDefinition) (Tables, error) {
	var out Tables
	sheets := wb.GetSheetList()

	for _, def := range defs {
		var (
			table Table
			warns []string
		)

		if def.Info.Sheet < 0 || def.Info.Sheet >= len(sheets) {
			table = Table{Key: def.Info.Key}
			warns = []string{fmt.Sprintf("%s: sheet %d not found in workbook (%d sheets)",
				def.Info.Key, def.Info.Sheet+1, len(sheets))}
		} else {
			rows, err := sheetRows(ctx, wb, sheets[def.Info.Sheet])
			switch {
			case ctx.Err() != nil:
				return Tables{}, ctx.Err()
			case err != nil:
				table = Table{Key: def.Info.Key}
				warns = []string{fmt.Sprintf("%s: read sheet %q: %v", def.Info.Key, sheets[def.Info.Sheet], err)}
			default:
				table, warns = buildTable(def, rows)
			}
		}

		out.Warnings = append(out.Warnings, warns...)
		out.set(table)
	}

	return out, nil
}

// sheetRows streams a sheet's rows, stopping early when ctx is done.
func sheetRows(ctx context.Context, wb *excelize.File, sheet string) ([][]string, error) {
	it, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows [][]string
	for n := 0; it.Next(); n++ {
		if n%rowCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := it.Columns()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, it.Error()
}

// ctxReader fails reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// LoadCSV reads one reference table from CSV data.
// A UTF-8 or UTF-16 byte order mark is honoured; invalid UTF-8 is replaced.
func LoadCSV(def TableDefinition, r io.Reader) (Table, []string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, nil, ErrEmptyFile
	}

	table, warns := buildTable(def, rows)
	return table, warns, nil
}

// LoadCSVTables reads the HSN and SAC tables from two CSV sources.
func LoadCSVTables(hsn, sac io.Reader) (Tables, error) {
	var out Tables

	for _, src := range []struct {
		key string
		r   io.Reader
	}{
		{TableHSN, hsn},
		{TableSAC, sac},
	} {
		def, ok := Get(src.key)
		if !ok {
			return Tables{}, fmt.Errorf("unknown table: %s", src.key)
		}

		table, warns, err := LoadCSV(def, src.r)
		if err != nil {
			return Tables{}, fmt.Errorf("%s: %w", src.key, err)
		}
		out.Warnings = append(out.Warnings, warns...)
		out.set(table)
	}

	return out, nil
}

// buildTable converts raw rows into a Table using the definition's columns.
func buildTable(def TableDefinition, rows [][]string) (Table, []string) {
	table := Table{Key: def.Info.Key}

	headerRow := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return table, []string{fmt.Sprintf("%s: no header row found", def.Info.Key)}
	}

	idx := MakeHeaderIndex(rows[headerRow])

	codePos, hasCode := idx.Lookup(def.Code.Name)
	descPos, hasDesc := idx.Lookup(def.Description.Name)

	// A missing required column empties the table. Without a code column
	// there is nothing to key records on, required or not.
	if !hasCode {
		return table, []string{fmt.Sprintf("%s: column %q not found", def.Info.Key, def.Code.Name)}
	}
	if !hasDesc && def.Description.Required {
		return table, []string{fmt.Sprintf("%s: required column %q not found", def.Info.Key, def.Description.Name)}
	}

	var warns []string
	if !hasDesc {
		warns = append(warns, fmt.Sprintf("%s: column %q not found, descriptions unavailable",
			def.Info.Key, def.Description.Name))
	}

	for _, row := range rows[headerRow+1:] {
		if isEmptyRow(row) {
			continue
		}

		code := CleanCell(cellAt(row, codePos))
		if def.Code.Normalizer != nil {
			code = def.Code.Normalizer(code)
		}
		if code == "" {
			continue
		}

		rec := Record{Code: code}
		if hasDesc {
			desc := cellAt(row, descPos)
			if def.Description.Normalizer != nil {
				desc = def.Description.Normalizer(desc)
			}
			rec.Description = desc
			rec.HasDescription = desc != ""
		}
		table.Records = append(table.Records, rec)
	}

	return table, warns
}

// set stores t in the slot matching its key.
func (ts *Tables) set(t Table) {
	switch t.Key {
	case TableHSN:
		ts.HSN = t
	case TableSAC:
		ts.SAC = t
	}
}
