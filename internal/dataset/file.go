package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format is an on-disk dataset encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatCSVGzip
	FormatCSVZstd
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatCSVGzip:
		return "csv.gz"
	case FormatCSVZstd:
		return "csv.zst"
	case FormatXLSX:
		return "xlsx"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for a path whose extension is not supported.
var ErrUnknownFormat = errors.New("dataset: unknown file format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".csv.gz"):
		return FormatCSVGzip, nil
	case strings.HasSuffix(name, ".csv.zst"):
		return FormatCSVZstd, nil
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX, nil
	}
	return 0, fmt.Errorf("%w: %s (want .csv, .csv.gz, .csv.zst or .xlsx)", ErrUnknownFormat, path)
}

// Save writes obs to path in the format its extension names, creating
// parent directories as needed.
func Save(path string, obs []models.Observation) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("dataset: create %s: %w", dir, err)
		}
	}
	if format == FormatXLSX {
		return writeXLSX(path, records(obs))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	if err := writeCompressed(f, format, obs); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: close %s: %w", path, err)
	}
	return nil
}

func writeCompressed(w io.Writer, format Format, obs []models.Observation) error {
	switch format {
	case FormatCSVGzip:
		gz := gzip.NewWriter(w)
		if err := WriteCSV(gz, obs); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("dataset: gzip: %w", err)
		}
		return nil
	case FormatCSVZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("dataset: zstd: %w", err)
		}
		if err := WriteCSV(enc, obs); err != nil {
			enc.Close() //nolint:errcheck
			return err
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("dataset: zstd: %w", err)
		}
		return nil
	default:
		return WriteCSV(w, obs)
	}
}

// Load reads observations from path in the format its extension names.
func Load(path string) ([]models.Observation, error) {
	recs, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	obs, err := parse(recs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

func readRecords(path string) ([][]string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return readXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	switch format {
	case FormatCSVGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset: gzip %s: %w", path, err)
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	case FormatCSVZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	recs, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	return recs, nil
}
