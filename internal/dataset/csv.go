// Package dataset reads and writes choice observations as CSV, compressed
// CSV and Excel workbooks.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/choicelab/choicelab/internal/models"
)

// Header is the column order of every dataset this package writes.
var Header = []string{
	models.ColumnID,
	models.AttrCost1,
	models.AttrTime1,
	models.AttrCost2,
	models.AttrTime2,
	models.ColumnChoice,
}

// Row represents a single data row with column name to value mapping.
type Row map[string]string

// WriteCSV writes obs with a header row. Floats use the shortest
// representation that parses back to the same value.
func WriteCSV(w io.Writer, obs []models.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records(obs)); err != nil {
		return fmt.Errorf("dataset: write csv: %w", err)
	}
	return nil
}

// ReadCSV parses observations written by WriteCSV. Columns are matched by
// header name, so their order does not matter and extra columns are ignored.
func ReadCSV(r io.Reader) ([]models.Observation, error) {
	recs, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse csv: %w", err)
	}
	return parse(recs)
}

func records(obs []models.Observation) [][]string {
	out := make([][]string, 0, len(obs)+1)
	out = append(out, slices.Clone(Header))
	for _, o := range obs {
		out = append(out, []string{
			strconv.Itoa(o.RespondentID),
			formatFloat(o.Cost1),
			formatFloat(o.Time1),
			formatFloat(o.Cost2),
			formatFloat(o.Time2),
			strconv.Itoa(o.Choice),
		})
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parse turns a header row plus data rows into observations. Row numbers in
// errors are 1-based and count the header.
func parse(recs [][]string) ([]models.Observation, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("dataset: empty input (no header row)")
	}

	index := map[string]int{}
	for i, h := range recs[0] {
		index[h] = i
	}
	for _, col := range Header {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("dataset: missing column %q", col)
		}
	}

	obs := make([]models.Observation, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		line := i + 2
		if len(rec) < len(recs[0]) {
			return nil, fmt.Errorf("dataset: row %d has %d columns, expected %d", line, len(rec), len(recs[0]))
		}

		var o models.Observation
		var err error
		if o.RespondentID, err = strconv.Atoi(rec[index[models.ColumnID]]); err != nil {
			return nil, fmt.Errorf("dataset: row %d column %q: %w", line, models.ColumnID, err)
		}
		if o.Choice, err = strconv.Atoi(rec[index[models.ColumnChoice]]); err != nil {
			return nil, fmt.Errorf("dataset: row %d column %q: %w", line, models.ColumnChoice, err)
		}
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{models.AttrCost1, &o.Cost1},
			{models.AttrTime1, &o.Time1},
			{models.AttrCost2, &o.Cost2},
			{models.AttrTime2, &o.Time2},
		} {
			if *f.dst, err = strconv.ParseFloat(rec[index[f.col]], 64); err != nil {
				return nil, fmt.Errorf("dataset: row %d column %q: %w", line, f.col, err)
			}
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// LoadRows reads any supported file and returns rows as maps of column to
// value. The first row is treated as headers (column names).
func LoadRows(path string) ([]Row, error) {
	recs, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty (no header row)", path)
	}

	headers := recs[0]
	rows := make([]Row, 0, len(recs)-1)
	for i, record := range recs[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("dataset: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadRange loads the observations in the given range [start, end]
// (1-based, inclusive). Row 1 is the first data row (after headers).
func LoadRange(path string, start, end int) ([]models.Observation, error) {
	if start < 1 {
		return nil, fmt.Errorf("dataset: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("dataset: range end (%d) must be >= start (%d)", end, start)
	}

	all, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Clamp end to available rows
	if end > len(all) {
		end = len(all)
	}
	if start > len(all) {
		return []models.Observation{}, nil
	}
	return all[start-1 : end], nil
}
