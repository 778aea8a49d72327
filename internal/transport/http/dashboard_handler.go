package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "vgpulse/internal/errors"
	"vgpulse/internal/exporter"
	"vgpulse/internal/infrastructure"
	"vgpulse/internal/middleware"
	"vgpulse/internal/services"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// exportTables lists the tables a CSV export may select
var exportTables = []string{
	exporter.TableMarketShare,
	exporter.TableCategories,
	exporter.TableDistribution,
	exporter.TableForecast,
	exporter.TableTrendFits,
}

// DashboardHandler serves the dashboard tables with RFC 7807 error handling
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryParamValidator
	csv          *exporter.CSVWriter
	workbook     *exporter.WorkbookWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	logger = infrastructure.WithComponent(logger, "dashboard_handler")
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewQueryParamValidator(logger, errorHandler),
		csv:          exporter.NewCSVWriter("", logger),
		workbook:     exporter.NewWorkbookWriter("", logger),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the dashboard routes on an existing router
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/market-share", h.GetMarketShare)
		r.Get("/distribution", h.GetDistribution)
		r.Get("/categories", h.GetCategories)
		r.Get("/forecast", h.GetForecast)
		r.Get("/dashboard", h.GetDashboard)

		r.Route("/dataset", func(r chi.Router) {
			r.Get("/summary", h.GetDatasetSummary)
			r.Post("/reload", h.ReloadDataset)
		})
	})

	r.Get("/export", h.Export)
}

// GetMarketShare handles GET /api/market-share
func (h *DashboardHandler) GetMarketShare(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.MarketShare(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.respond(w, r, result, len(result.Rows), result.Empty)
}

// GetDistribution handles GET /api/distribution
func (h *DashboardHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	req, ok := h.validator.DistributionRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Distribution(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.respond(w, r, result, len(result.Points), result.Empty)
}

// GetCategories handles GET /api/categories
func (h *DashboardHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	dim, ok := h.validator.Dimension(w, r)
	if !ok {
		return
	}

	top, err := h.service.Categories(r.Context(), dim)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"dimension": dim,
		"data":      top,
		"count":     len(top),
	})
}

// GetForecast handles GET /api/forecast
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Forecast(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.respond(w, r, result, len(result.Points), len(result.Points) == 0)
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.validator.DistributionRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.service.Snapshot(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snap,
	})
}

// GetDatasetSummary handles GET /api/dataset/summary
func (h *DashboardHandler) GetDatasetSummary(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// ReloadDataset handles POST /api/dataset/reload
func (h *DashboardHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded over API",
		slog.Int("records", status.Summary.Records),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// Export handles GET /api/export. CSV exports a single table, XLSX every
// table of the dashboard snapshot.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.validator.ValidateEnum(w, r, "format", []string{FormatCSV, FormatXLSX}, FormatXLSX)
	if !ok {
		return
	}
	table, ok := h.validator.ValidateEnum(w, r, "table", exportTables, exporter.TableMarketShare)
	if !ok {
		return
	}
	req, ok := h.validator.DistributionRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.service.Snapshot(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	report := exporter.Report{
		MarketShare:  snap.MarketShare.Rows,
		Categories:   snap.Distribution.Categories,
		Distribution: snap.Distribution.Points,
		Forecast:     snap.Forecast.Points,
		Fits:         snap.Forecast.Fits,
	}
	stamp := time.Now().UTC().Format("20060102")

	var (
		buf         bytes.Buffer
		contentType string
		filename    string
	)
	switch format {
	case FormatCSV:
		var selected exporter.Table
		for _, t := range report.Tables() {
			if t.Name == table {
				selected = t
			}
		}
		err = h.csv.WriteTable(&buf, selected, true)
		contentType = "text/csv; charset=utf-8"
		filename = fmt.Sprintf("vgpulse_%s_%s.csv", table, stamp)
	default:
		err = h.workbook.Write(&buf, report.Tables())
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = fmt.Sprintf("vgpulse_%s.xlsx", stamp)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", format),
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, apierrors.ExportFailed(format, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// respond writes the success envelope, flagging results with no data
func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}, count int, empty bool) {
	body := map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	}
	if empty {
		body["empty"] = true
	}
	render.JSON(w, r, body)
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, services.ToAPIError(err))
}
