package validation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgpulse/internal/shared/testutil"
	"vgpulse/pkg/contracts/domain"
)

func newTestValidator(t *testing.T) *FileValidator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("Name,Platform\n"), 0644))
	return path
}

func TestFileValidator_ValidateDataset(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "csv dataset",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "sales.csv")
			},
		},
		{
			name: "xlsx dataset with upper case extension",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "sales.XLSX")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "sales.json")
			},
			wantErr:       true,
			errorContains: "not a CSV or XLSX file",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "~$sales.xlsx")
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t)
			err := v.ValidateDataset(tt.setupFunc(t))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDataUnavailable)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newTestValidator(t)

	dir := filepath.Join(t.TempDir(), "exports", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	file := writeFile(t, t.TempDir(), "not-a-dir")
	assert.Error(t, v.ValidateOutputDirectory(file))
}

func TestFileValidator_FindDatasets(t *testing.T) {
	v := newTestValidator(t)
	dir := t.TempDir()

	older := writeFile(t, dir, "vgsales_2015.csv")
	newer := writeFile(t, dir, "vgsales_2016.xlsx")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "~$vgsales_2016.xlsx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "exports.csv"), 0755))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	files, err := v.FindDatasets(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, newer, files[0].Path)
	assert.Equal(t, "vgsales_2015.csv", files[1].Name)
	assert.Positive(t, files[0].Size)

	_, err = v.FindDatasets(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
