package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"data.csv", FormatCSV},
		{"out/DATA.CSV", FormatCSV},
		{"data.csv.gz", FormatCSVGzip},
		{"data.csv.zst", FormatCSVZstd},
		{"/tmp/run/data.xlsx", FormatXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatOf("data.parquet")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	obs := sampleObservations()

	for _, name := range []string{"obs.csv", "obs.csv.gz", "obs.csv.zst", "obs.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, obs))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, obs, got)
		})
	}
}

func TestSave_CompressedIsSmaller(t *testing.T) {
	obs := sampleObservations()
	for len(obs) < 3000 {
		obs = append(obs, obs...)
	}
	dir := t.TempDir()

	size := func(name string) int64 {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, obs))
		info, err := os.Stat(path)
		require.NoError(t, err)
		return info.Size()
	}

	plain := size("obs.csv")
	assert.Less(t, size("obs.csv.gz"), plain)
	assert.Less(t, size("obs.csv.zst"), plain)
}

func TestSave_UnknownFormat(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "obs.json"), sampleObservations())
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_NotCompressed(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "obs.csv.gz", "id,cost1,time1,cost2,time2,choice\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset: gzip")
}

func TestLoad_ReportsPathOnParseError(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "obs.csv", "id,cost1\n1,4\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), `missing column "time1"`)
}

func TestXLSX_SheetLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.xlsx")
	require.NoError(t, Save(path, sampleObservations()[:1]))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	header, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "id", header)

	cost, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", cost)
}

func TestLoad_XLSXMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `read sheet "observations"`)
}
