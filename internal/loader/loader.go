package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"

	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
)

// Sentinel errors carried as the cause of the AppError returned by Load.
var (
	ErrNoSource        = errors.New("no dataset source configured")
	ErrSourceNotFound  = errors.New("dataset source not found")
	ErrMalformedSource = errors.New("dataset source is not a readable table")
)

// Origin names where a dataset was read from.
type Origin string

const (
	OriginUpload Origin = "upload"
	OriginLocal  Origin = "local"
	OriginURL    Origin = "url"
)

// Upload is a file supplied by a user.
type Upload struct {
	Name string
	Data []byte
}

// Source lists the candidate locations of the dataset.
type Source struct {
	Upload    *Upload
	LocalPath string
	URL       string
}

// Resolve picks the location Load will read: the upload, then the local
// path when it exists, then the URL. A configured local path that does not
// exist, with no URL to fall back to, is ErrSourceNotFound; no candidate at
// all is ErrNoSource.
func (s Source) Resolve() (Origin, error) {
	if s.Upload != nil {
		return OriginUpload, nil
	}
	if s.LocalPath != "" {
		if info, err := os.Stat(s.LocalPath); err == nil && !info.IsDir() {
			return OriginLocal, nil
		}
	}
	if s.URL != "" {
		return OriginURL, nil
	}
	if s.LocalPath != "" {
		return "", ErrSourceNotFound
	}
	return "", ErrNoSource
}

// Identity returns a stable key for the resolved location. Uploads are keyed
// by content hash.
func (s Source) Identity() string {
	origin, err := s.Resolve()
	if err != nil {
		return ""
	}
	switch origin {
	case OriginUpload:
		sum := sha256.Sum256(s.Upload.Data)
		return "upload:" + hex.EncodeToString(sum[:])
	case OriginLocal:
		if abs, err := filepath.Abs(s.LocalPath); err == nil {
			return "local:" + abs
		}
		return "local:" + s.LocalPath
	default:
		return "url:" + s.URL
	}
}

// Raw is a dataset as read from its source, before normalization.
type Raw struct {
	Frame    dataframe.DataFrame
	Origin   Origin
	Name     string
	Format   Format
	Bytes    int64
	ReadTime time.Duration
}

// Config holds loader limits.
type Config struct {
	// MaxDownloadBytes caps URL downloads and uploads. Zero disables the cap.
	MaxDownloadBytes int64
	// HTTPTimeout bounds a whole URL download.
	HTTPTimeout time.Duration
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxDownloadBytes: 500 << 20,
		HTTPTimeout:      2 * time.Minute,
	}
}

// Loader reads dataset sources.
type Loader struct {
	logger *slog.Logger
	config Config
	client *http.Client
}

// NewLoader creates a loader. A nil logger uses slog.Default.
func NewLoader(logger *slog.Logger, config Config) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
		config: config,
		client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// WithHTTPClient replaces the client used for URL sources.
func (l *Loader) WithHTTPClient(client *http.Client) *Loader {
	l.client = client
	return l
}

// Load resolves src and reads it into a raw DataFrame.
func (l *Loader) Load(ctx context.Context, src Source) (*Raw, error) {
	start := time.Now()

	origin, err := src.Resolve()
	switch {
	case errors.Is(err, ErrNoSource):
		return nil, apperrors.NewAppError(apperrors.ErrTypeNoData, "no dataset source configured", err)
	case err != nil:
		return nil, apperrors.NewNotFoundError("dataset "+src.LocalPath, err).
			WithContext("path", src.LocalPath)
	}

	l.logger.InfoContext(ctx, "dataset source resolved",
		slog.String("origin", string(origin)))

	path, name, cleanup, err := l.materialize(ctx, origin, src)
	if err != nil {
		l.logger.WarnContext(ctx, "dataset source unavailable",
			slog.String("origin", string(origin)),
			slog.String("error", err.Error()))
		return nil, err
	}
	defer cleanup()

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewStorageError("stat dataset", err)
	}

	format, err := detectFileFormat(path, name)
	if err != nil {
		return nil, apperrors.NewStorageError("read dataset", err)
	}

	frame, err := readFormat(path, format)
	if err != nil {
		l.logger.WarnContext(ctx, "dataset is not a readable table",
			slog.String("name", name),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, apperrors.NewParsingError(fmt.Sprintf("read %s", name),
			fmt.Errorf("%w: %w", ErrMalformedSource, err)).
			WithContext("format", string(format))
	}

	raw := &Raw{
		Frame:    frame,
		Origin:   origin,
		Name:     name,
		Format:   format,
		Bytes:    info.Size(),
		ReadTime: time.Since(start),
	}

	l.logger.InfoContext(ctx, "dataset read",
		slog.String("origin", string(origin)),
		slog.String("name", name),
		slog.String("format", string(format)),
		slog.Int("rows", frame.Nrow()),
		slog.Int("columns", frame.Ncol()),
		slog.Int64("bytes", raw.Bytes),
		slog.Duration("elapsed", raw.ReadTime))

	return raw, nil
}

// materialize returns a local file path for the source and a cleanup func.
func (l *Loader) materialize(ctx context.Context, origin Origin, src Source) (string, string, func(), error) {
	noop := func() {}

	switch origin {
	case OriginUpload:
		limit := l.config.MaxDownloadBytes
		if limit > 0 && int64(len(src.Upload.Data)) > limit {
			return "", "", noop, apperrors.NewStorageError("store upload",
				fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, len(src.Upload.Data)))
		}
		tmp, err := writeTemp(bytes.NewReader(src.Upload.Data), 0)
		if err != nil {
			return "", "", noop, err
		}
		return tmp, src.Upload.Name, func() { os.Remove(tmp) }, nil

	case OriginLocal:
		return src.LocalPath, filepath.Base(src.LocalPath), noop, nil

	default:
		tmp, name, err := l.download(ctx, src.URL)
		if err != nil {
			return "", "", noop, err
		}
		return tmp, name, func() { os.Remove(tmp) }, nil
	}
}

func readFormat(path string, format Format) (dataframe.DataFrame, error) {
	switch format {
	case FormatParquet:
		return readParquet(path)
	case FormatXLSX:
		return readXLSX(path)
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		defer f.Close()
		return readCSV(f)
	}
	return dataframe.DataFrame{}, errors.New("unsupported file format")
}
