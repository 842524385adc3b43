package corr

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"
)

// ReadFile reads a correspondence table, choosing the format from the file
// extension: .csv is CSV, anything else is treated as FITS.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var rows []Row
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = ReadCSV(f)
	} else {
		rows, err = ReadFITS(f)
	}
	if err != nil {
		return nil, &InputError{Op: "read", Path: path, Err: err}
	}
	return rows, nil
}

// ReadFITS reads the binary table in the first extension of a FITS stream,
// as written by astrometry.net for .corr files.
func ReadFITS(r io.Reader) ([]Row, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("open fits: %w", err)
	}
	defer f.Close()

	hdus := f.HDUs()
	if len(hdus) < 2 {
		return nil, errors.New("fits: no table extension")
	}
	tbl, ok := hdus[1].(*fitsio.Table)
	if !ok {
		return nil, errors.New("fits: first extension is not a table")
	}
	for _, name := range Columns {
		if tbl.Index(name) < 0 {
			return nil, fmt.Errorf("fits: missing column %q", name)
		}
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, fmt.Errorf("fits: read table: %w", err)
	}
	defer rows.Close()

	// Columns come back in their stored type (E, D, J, ...) and are
	// converted here, so any scalar numeric TFORM is accepted.
	var out []Row
	for rows.Next() {
		data := make(map[string]interface{}, len(Columns))
		for _, name := range Columns {
			data[name] = nil
		}
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("fits: row %d: %w", len(out), err)
		}
		var vals [5]float64
		for i, name := range Columns {
			v, err := toFloat(data[name])
			if err != nil {
				return nil, fmt.Errorf("fits: row %d: %s: %w", len(out), name, err)
			}
			vals[i] = v
		}
		out = append(out, Row{
			FieldX:      vals[0],
			FieldY:      vals[1],
			FieldRA:     vals[2],
			FieldDec:    vals[3],
			MatchWeight: vals[4],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fits: read table: %w", err)
	}
	return out, nil
}

// toFloat converts a scalar FITS table cell to float64.
func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case nil:
		return 0, errors.New("missing value")
	default:
		return 0, fmt.Errorf("unsupported column type %T", v)
	}
}

// ReadCSV reads rows from CSV with a header naming at least the columns in
// Columns. Extra columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make([]int, len(Columns))
	for i, name := range Columns {
		idx, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("csv: missing column %q", name)
		}
		cols[i] = idx
	}

	var out []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		var vals [5]float64
		for i, c := range cols {
			if c >= len(rec) {
				return nil, fmt.Errorf("csv line %d: missing %s", line, Columns[i])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: %s: %w", line, Columns[i], err)
			}
			vals[i] = v
		}
		out = append(out, Row{
			FieldX:      vals[0],
			FieldY:      vals[1],
			FieldRA:     vals[2],
			FieldDec:    vals[3],
			MatchWeight: vals[4],
		})
	}
	return out, nil
}

// WriteCSV writes rows with a header in the format ReadCSV accepts.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.FieldX, 'f', 4, 64),
			strconv.FormatFloat(r.FieldY, 'f', 4, 64),
			strconv.FormatFloat(r.FieldRA, 'f', 8, 64),
			strconv.FormatFloat(r.FieldDec, 'f', 8, 64),
			strconv.FormatFloat(r.MatchWeight, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
