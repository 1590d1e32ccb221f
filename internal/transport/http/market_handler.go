package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/loader"
	"github.com/franfh599/dashboard-autos/internal/middleware"
	"github.com/franfh599/dashboard-autos/internal/services"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// uploadField is the multipart field carrying an uploaded dataset.
const uploadField = "file"

// MarketHandler serves the market views, dataset management and exports.
type MarketHandler struct {
	service        MarketServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validator      *middleware.Validator
	maxUploadBytes int64
	now            func() time.Time
}

// NewMarketHandler creates the handler. maxUploadBytes bounds uploads; zero
// or less means no limit.
func NewMarketHandler(service MarketServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *MarketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "market_handler")),
		errorHandler:   errorHandler,
		validator:      middleware.NewValidator(),
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// Routes returns the market routes
func (h *MarketHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/dataset", func(r chi.Router) {
		r.Get("/", h.GetDataset)
		r.Post("/reload", h.ReloadDataset)
		r.With(
			middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"),
			middleware.MaxBodySize(h.maxUploadBytes, h.logger, h.errorHandler),
		).Post("/upload", h.UploadDataset)
		r.Delete("/upload", h.ClearUpload)
	})
	r.Get("/cache", h.GetCacheStats)

	r.Get("/macro", h.GetMacro)
	r.Get("/benchmark", h.GetBenchmark)
	r.Get("/deep-dive", h.GetDeepDive)
	r.Get("/yoy", h.GetYoY)
	r.Get("/summary", h.GetSummary)

	r.Get("/export/{format}", h.Export)

	return r
}

// fail renders err, translating loader size errors to 413.
func (h *MarketHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.Is(err, loader.ErrSourceTooLarge) || errors.As(err, &maxErr) {
		err = apierrors.ErrPayloadTooLarge
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetDataset handles GET /api/market/dataset. A dataset that failed to load
// is still described; its status says why.
func (h *MarketHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Info(r.Context()))
}

// ReloadDataset handles POST /api/market/dataset/reload
func (h *MarketHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	result := h.service.Reload(r.Context())
	if result.Err != nil {
		h.fail(w, r, result.Err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.String("status", string(result.Status)),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.JSON(w, r, h.service.Info(r.Context()))
}

// UploadDataset handles POST /api/market/dataset/upload
func (h *MarketHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadField, "a dataset file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result := h.service.Upload(r.Context(), header.Filename, data)
	if result.Err != nil {
		h.fail(w, r, result.Err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset upload accepted",
		slog.String("name", header.Filename),
		slog.Int("bytes", len(data)),
		slog.String("status", string(result.Status)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.service.Info(r.Context()))
}

// ClearUpload handles DELETE /api/market/dataset/upload
func (h *MarketHandler) ClearUpload(w http.ResponseWriter, r *http.Request) {
	h.service.ClearUpload(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetCacheStats handles GET /api/market/cache
func (h *MarketHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.CacheStats())
}

// GetMacro handles GET /api/market/macro
func (h *MarketHandler) GetMacro(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params(w, r)
	if !ok {
		return
	}
	view, err := h.service.Macro(r.Context(), params)
	h.respond(w, r, view, err)
}

// GetBenchmark handles GET /api/market/benchmark
func (h *MarketHandler) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params(w, r)
	if !ok {
		return
	}
	view, err := h.service.Benchmark(r.Context(), params)
	h.respond(w, r, view, err)
}

// GetDeepDive handles GET /api/market/deep-dive
func (h *MarketHandler) GetDeepDive(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params(w, r)
	if !ok {
		return
	}
	if params.Brand == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("brand", "brand is required"))
		return
	}
	view, err := h.service.DeepDive(r.Context(), params)
	h.respond(w, r, view, err)
}

// GetYoY handles GET /api/market/yoy. An insufficient selection or selected
// years without rows are normal responses carrying status
// insufficient_selection or no_data.
func (h *MarketHandler) GetYoY(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params(w, r)
	if !ok {
		return
	}
	result, err := h.service.YoY(r.Context(), params)
	h.respond(w, r, result, err)
}

// GetSummary handles GET /api/market/summary
func (h *MarketHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), params)
	h.respond(w, r, summary, err)
}

// Export handles GET /api/market/export/{format}. The file is generated in
// memory so a failure can still be reported as a problem response.
func (h *MarketHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of: csv, xlsx, pdf"))
		return
	}
	params, ok := h.params(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, format, params); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(h.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

func (h *MarketHandler) params(w http.ResponseWriter, r *http.Request) (domain.ViewParams, bool) {
	params, err := parseViewQuery(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.ViewParams{}, false
	}
	return params, true
}

func (h *MarketHandler) respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, v)
}
