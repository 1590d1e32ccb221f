package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
)

func TestValidateOutputFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	tests := []struct {
		name     string
		path     string
		exts     []string
		wantType apperrors.ErrorType
	}{
		{"matching extension", filepath.Join(dir, "reporte.pdf"), []string{".pdf"}, ""},
		{"extension is case-insensitive", filepath.Join(dir, "DATOS.CSV"), []string{".csv"}, ""},
		{"any extension", filepath.Join(dir, "salida"), nil, ""},
		{"nested directory is created", filepath.Join(dir, "exports", "2024", "datos.xlsx"), []string{".xlsx"}, ""},
		{"wrong extension", filepath.Join(dir, "reporte.txt"), []string{".pdf"}, apperrors.ErrTypeValidation},
		{"empty path", " ", nil, apperrors.ErrTypeValidation},
		{"path is a directory", dir, nil, apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateOutputFile(tt.path, tt.exts...)
			if tt.wantType == "" {
				require.NoError(t, err)
				assert.DirExists(t, filepath.Dir(tt.path))
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestValidateOutputDirectoryLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, NewFileValidator(nil).ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidateOutputDirectoryBlockedByFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ocupado")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := NewFileValidator(nil).ValidateOutputDirectory(filepath.Join(file, "sub"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
