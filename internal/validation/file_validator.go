// Package validation checks the files the command line tools write before
// any data is generated for them.
package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
)

// FileValidator validates output locations
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputFile checks that path can be written as a new or replaced
// file whose extension is one of exts (case-insensitive, with the dot).
// The parent directory is created when missing.
func (v *FileValidator) ValidateOutputFile(path string, exts ...string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewAppValidationError("output path is required")
	}

	if len(exts) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		ok := false
		for _, allowed := range exts {
			if ext == strings.ToLower(allowed) {
				ok = true
				break
			}
		}
		if !ok {
			v.logger.Warn("Output extension does not match format",
				slog.String("file", path),
				slog.Any("allowed", exts))
			return apperrors.NewAppValidationError("output file must end in "+strings.Join(exts, " or ")).
				WithContext("path", path)
		}
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewAppValidationError("output path is a directory").WithContext("path", path)
	}

	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory creates dir if needed and verifies it is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("create output directory", err).WithContext("directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory is not writable", err).WithContext("directory", dir)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
