package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlekseyZapadovnikov/issue-tracker/conf"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Server struct {
	Address string
	server  *http.Server

	router   *chi.Mux
	validate *validator.Validate

	issues  IssueService
	catalog CatalogService
	details DetailService
	metrics MetricsCollector
}

// New конструирует HTTP-сервер на базе chi и регистрирует все маршруты.
// metrics может быть nil, тогда /metrics не регистрируется.
func New(cfg conf.HttpServConf, issues IssueService, catalog CatalogService, details DetailService, metrics MetricsCollector) *Server {
	servAdres := cfg.GetAddress()
	mux := chi.NewMux()
	srv := &Server{
		Address:  servAdres,
		router:   mux,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		issues:   issues,
		catalog:  catalog,
		details:  details,
		metrics:  metrics,
	}
	srv.server = &http.Server{
		Addr:              servAdres,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.setupRoutes()

	return srv
}

// Start запускает HTTP-сервер и блокирует поток до остановки.
func (s *Server) Start() error {
	slog.Info("server starting", "address", s.server.Addr)
	return s.server.ListenAndServe()
}

// Handler отдаёт корневой роутер, например для httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes настраивает middleware и HTTP-маршруты.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.observeRequests)
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Post("/", s.handleUserCreate)
		r.Get("/", s.handleUserList)
		r.Get("/{id}", s.handleUserGet)
	})

	s.router.Route("/issues", func(r chi.Router) {
		r.Post("/", s.handleIssueCreate)
		r.Get("/", s.handleIssueList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleIssueGet)
			r.Put("/", s.handleIssueUpdate)
			r.Delete("/", s.handleIssueDelete)
			r.Patch("/state", s.handleIssueState)
			r.Get("/assignees", s.handleAssigneesList)
			r.Put("/assignees", s.handleAssigneesReplace)
			r.Put("/labels", s.handleIssueLabelsReplace)
			r.Get("/comments", s.handleCommentList)
			r.Post("/comments", s.handleCommentCreate)
			r.Get("/detail", s.handleIssueDetail)
		})
	})

	s.router.Put("/comments/{id}", s.handleCommentUpdate)
	s.router.Delete("/comments/{id}", s.handleCommentDelete)

	s.router.Route("/labels", func(r chi.Router) {
		r.Post("/", s.handleLabelCreate)
		r.Get("/", s.handleLabelList)
		r.Put("/{id}", s.handleLabelUpdate)
		r.Delete("/{id}", s.handleLabelDelete)
	})

	s.router.Route("/milestones", func(r chi.Router) {
		r.Post("/", s.handleMilestoneCreate)
		r.Get("/", s.handleMilestoneList)
		r.Put("/{id}", s.handleMilestoneUpdate)
		r.Delete("/{id}", s.handleMilestoneDelete)
	})
}

// observeRequests считает ответы по методу и статусу.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, status)
	})
}

// Shutdown останавливает HTTP-сервер с таймаутом на корректное завершение.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// ---------- утилитарные функции ----------

// writeJSON сериализует структуру в JSON-ответ с нужным статусом.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// mapDomainError переводит доменные ошибки в HTTP-статусы и коды ответа.
func mapDomainError(err error) (status int, code ErrorResponseErrorCode, msg string) {
	if err == nil {
		return http.StatusOK, "", ""
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, NOTFOUND, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, INVALIDINPUT, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, CONFLICT, err.Error()
	case errors.Is(err, domain.ErrDetailTimeout):
		return http.StatusGatewayTimeout, DETAILTIMEOUT, err.Error()
	default:
		slog.Warn("unmapped domain error", "err", err.Error())
		return http.StatusInternalServerError, INTERNALERROR, "internal error"
	}
}
