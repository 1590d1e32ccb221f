package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
)

// ErrSourceTooLarge is returned when a download or upload exceeds the
// configured size limit.
var ErrSourceTooLarge = errors.New("dataset source exceeds size limit")

// download streams rawURL into a temporary file and returns its path and the
// name used for format detection. The caller removes the file.
func (l *Loader) download(ctx context.Context, rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", apperrors.NewAppValidationError(fmt.Sprintf("invalid dataset url %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", "", apperrors.NewNetworkError("build dataset request", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", "", apperrors.NewNetworkError("fetch dataset",
			fmt.Errorf("%w: %w", ErrSourceNotFound, err)).WithContext("url", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", apperrors.NewNetworkError("fetch dataset",
			fmt.Errorf("%w: unexpected status %s", ErrSourceNotFound, resp.Status)).
			WithContext("url", rawURL).
			WithContext("status_code", resp.StatusCode)
	}

	limit := l.config.MaxDownloadBytes
	if resp.ContentLength > 0 && limit > 0 && resp.ContentLength > limit {
		return "", "", apperrors.NewStorageError("fetch dataset",
			fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, resp.ContentLength))
	}

	tmpPath, err := writeTemp(resp.Body, limit)
	if err != nil {
		return "", "", err
	}
	return tmpPath, path.Base(u.Path), nil
}

// writeTemp copies r into a new temporary file, failing once more than limit
// bytes have been read. A limit of 0 disables the check.
func writeTemp(r io.Reader, limit int64) (string, error) {
	f, err := os.CreateTemp("", "marketsuite-*")
	if err != nil {
		return "", apperrors.NewStorageError("create temporary file", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(f.Name())
		return "", apperrors.NewNetworkError("read dataset body", copyErr)
	case closeErr != nil:
		os.Remove(f.Name())
		return "", apperrors.NewStorageError("write temporary file", closeErr)
	case limit > 0 && n > limit:
		os.Remove(f.Name())
		return "", apperrors.NewStorageError("read dataset body",
			fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, limit))
	}
	return f.Name(), nil
}
