package services

import "errors"

// Market service errors
var (
	ErrBrandRequired       = errors.New("brand is required")
	ErrUnknownExportFormat = errors.New("unknown export format")
	ErrEmptyUpload         = errors.New("uploaded file is empty")
)
