package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appadvisory "github.com/bryanwahyu/rbi-inspect/internal/application/advisory"
	appdashboard "github.com/bryanwahyu/rbi-inspect/internal/application/dashboard"
	appequipment "github.com/bryanwahyu/rbi-inspect/internal/application/equipment"
	appinspections "github.com/bryanwahyu/rbi-inspect/internal/application/inspections"
	apprbi "github.com/bryanwahyu/rbi-inspect/internal/application/rbi"
	appreports "github.com/bryanwahyu/rbi-inspect/internal/application/reports"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/advisory"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/middleware"
)

// Services groups the use-cases exposed over HTTP.
type Services struct {
	Equipment   *appequipment.Service
	Analyses    *apprbi.Service
	Inspections *appinspections.Service
	Dashboard   *appdashboard.Service
	Reports     *appreports.Service
	Advisory    *appadvisory.Service
}

// Options configures the middleware chain. Nil fields are skipped.
type Options struct {
	CORSOrigins []string
	Logger      *slog.Logger
	Metrics     *middleware.RequestMetrics
	Limiter     *middleware.RateLimiter
	Health      map[string]middleware.HealthChecker
}

type Router struct {
	svc    Services
	logger *slog.Logger
}

func NewRouter(svc Services, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{svc: svc, logger: logger.With("component", "httpserver")}
	mux := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	if opts.Limiter != nil {
		mux.Use(opts.Limiter.Middleware)
	}

	if opts.Metrics != nil {
		mux.Get("/metrics", opts.Metrics.Handler)
	}
	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/equipment", r.wrap(r.handleListEquipment))
		rt.Post("/equipment", r.wrap(r.handleCreateEquipment))
		rt.Get("/equipment/{id}", r.wrap(r.handleGetEquipment))
		rt.Put("/equipment/{id}", r.wrap(r.handleUpdateEquipment))
		rt.Delete("/equipment/{id}", r.wrap(r.handleDeleteEquipment))
		rt.Post("/equipment/{id}/floc", r.wrap(r.handleAssignFLOC))
		rt.Get("/floc", r.wrap(r.handleFLOCGroups))

		rt.Get("/damage-mechanisms", r.wrap(r.handleDamageMechanisms))

		rt.Post("/rbi-analysis", r.wrap(r.handleRunAnalysis))
		rt.Get("/rbi-analysis", r.wrap(r.handleListAnalyses))
		rt.Get("/rbi-analysis/{id}", r.wrap(r.handleGetAnalysis))
		rt.Post("/rbi-analysis/{id}/narrative", r.wrap(r.handleNarrate))
		rt.Get("/rbi-analysis/{id}/narrative", r.wrap(r.handleLatestNarrative))

		rt.Get("/inspection-schedules", r.wrap(r.handleListSchedules))
		rt.Put("/inspection-schedules/{id}/complete", r.wrap(r.handleCompleteSchedule))

		rt.Get("/dashboard/stats", r.wrap(r.handleDashboardStats))

		rt.Get("/export/csv", r.wrap(r.handleExportCSV))
		rt.Post("/export/csv/publish", r.wrap(r.handlePublishCSV))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// maxBodyBytes caps every request body read by decode.
const maxBodyBytes = 1 << 20

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Body != nil {
			req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
		}
		err := h(w, req)
		if err == nil {
			return
		}
		status, kind := statusFor(err)
		if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
			r.logger.ErrorContext(req.Context(), "request failed",
				"method", req.Method, "path", req.URL.Path, "error", err)
		}
		if status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "30")
		}
		_ = writeJSON(w, status, middleware.ErrorBody{Error: kind, Message: fault.Message(err)})
	}
}

func statusFor(err error) (int, string) {
	if errors.Is(err, advisory.ErrQuotaExceeded) {
		return http.StatusTooManyRequests, "quota_exceeded"
	}
	switch kind := fault.Kind(err); kind {
	case fault.ErrInvalidInput:
		return http.StatusBadRequest, kind.Error()
	case fault.ErrNotFound:
		return http.StatusNotFound, kind.Error()
	case fault.ErrConflict:
		return http.StatusConflict, kind.Error()
	case fault.ErrStorage:
		return http.StatusServiceUnavailable, kind.Error()
	case fault.ErrNotConfigured:
		return http.StatusNotImplemented, kind.Error()
	}
	return http.StatusInternalServerError, "internal"
}

// writeJSON encodes before touching the response so a marshal failure
// leaves wrap free to answer 500.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// header sudah terkirim, error tulis tidak bisa dilaporkan lagi
	_, _ = w.Write(append(body, '\n'))
	return nil
}

func decode(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fault.InvalidInput("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fault.InvalidInput("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateID(id); err != nil {
		return "", fault.InvalidInput("%v", err)
	}
	return id, nil
}

func queryLimit(req *http.Request) (int, error) {
	v := req.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fault.InvalidInput("limit must be a non-negative integer, got %q", v)
	}
	return middleware.ValidateLimit(n), nil
}
