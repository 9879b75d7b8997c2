package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/shared/testutil"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	return NewCSVWriter(filepath.Join(dir, "output"), logger), dir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, fullPath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"category", "n_obs", "direction"},
				Records: [][]string{
					{"Total", "19", "up"},
					{"Lokal", "19", "down"},
				},
			},
			validate: func(t *testing.T, fullPath string) {
				lines := readLines(t, fullPath)
				assert.Equal(t, []string{"category,n_obs,direction", "Total,19,up", "Lokal,19,down"}, lines)
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"category", "last_actual"},
				Records:   [][]string{{"Jabodetabek", "1200.00"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, fullPath string) {
				content, err := os.ReadFile(fullPath)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "category,last_actual", lines[0])
				assert.Equal(t, "Jabodetabek,1200.00", lines[1])
			},
		},
		{
			name:     "quotes fields with separators",
			filePath: "quoted.csv",
			options: WriteOptions{
				Headers: []string{"category", "detail"},
				Records: [][]string{{"Lokal", "missing from a.csv, b.csv"}},
			},
			validate: func(t *testing.T, fullPath string) {
				lines := readLines(t, fullPath)
				assert.Equal(t, `Lokal,"missing from a.csv, b.csv"`, lines[1])
			},
		},
		{
			name:     "empty records",
			filePath: "nested/empty.csv",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, []string{"Col1,Col2"}, readLines(t, fullPath))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, dir := setupTestEnv(t)

			fullPath, err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "output", tt.filePath), fullPath)
			tt.validate(t, fullPath)
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer, _ := setupTestEnv(t)

	path, err := writer.WriteCSV("runs.csv", WriteOptions{
		Headers:   []string{"run"},
		Records:   [][]string{{"a"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	_, err = writer.WriteCSV("runs.csv", WriteOptions{
		Headers:   []string{"run"},
		Records:   [][]string{{"b"}},
		Append:    true,
		BOMPrefix: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFrun\na\nb\n", string(content))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer, dir := setupTestEnv(t)
	abs := filepath.Join(dir, "elsewhere", "abs.csv")

	got, err := writer.WriteCSV(abs, WriteOptions{Records: [][]string{{"x"}}})
	require.NoError(t, err)
	assert.Equal(t, abs, got)
	assert.FileExists(t, abs)
}

func TestCSVWriter_DirectoryInTheWay(t *testing.T) {
	writer, dir := setupTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "output", "taken.csv"), 0755))

	_, err := writer.WriteCSV("taken.csv", WriteOptions{Records: [][]string{{"x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
