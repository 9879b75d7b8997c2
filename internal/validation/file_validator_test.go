package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/shared/testutil"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("Tipe,Januari\nLokal,1\n"), 0644))
	return path
}

func TestFileValidator_ValidateTableFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name:      "csv file",
			setupFunc: func(t *testing.T) string { return writeFile(t, t.TempDir(), "kai_2024.csv") },
		},
		{
			name:      "xlsx file with upper case extension",
			setupFunc: func(t *testing.T) string { return writeFile(t, t.TempDir(), "KAI_2024.XLSX") },
		},
		{
			name:          "non-existent file",
			setupFunc:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.csv") },
			wantErr:       true,
			errorContains: "file does not exist",
		},
		{
			name:          "directory",
			setupFunc:     func(t *testing.T) string { return t.TempDir() },
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name:          "unsupported extension",
			setupFunc:     func(t *testing.T) string { return writeFile(t, t.TempDir(), "kai_2024.txt") },
			wantErr:       true,
			errorContains: "unsupported file type",
		},
		{
			name:          "excel lock file",
			setupFunc:     func(t *testing.T) string { return writeFile(t, t.TempDir(), "~$kai_2024.xlsx") },
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateTableFile(tt.setupFunc(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrValidation))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateInputs(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "kai_2024.csv")
	bad := writeFile(t, dir, "notes.txt")
	missing := filepath.Join(dir, "kai_2025.csv")

	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	require.NoError(t, v.ValidateInputs([]string{good}))
	testutil.AssertLogAttr(t, handler, "files", int64(1))

	err := v.ValidateInputs([]string{good, bad, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes.txt")
	assert.Contains(t, err.Error(), "kai_2025.csv")

	err = v.ValidateInputs(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "output", "nested")
		require.NoError(t, NewFileValidator(nil).ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)
		assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
	})

	t.Run("path is a file", func(t *testing.T) {
		file := writeFile(t, t.TempDir(), "output")
		err := NewFileValidator(nil).ValidateOutputDirectory(file)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Contains(t, err.Error(), "cannot create output directory")
	})
}
