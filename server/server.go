package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/manager"
	"github.com/kasuboski/shokoz/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type GenericResponse struct {
	Error    string `json:"error,omitempty"`
	Response any    `json:"response"`
}

type SeasonProvider interface {
	GetSeasonMetadata(ctx context.Context, req manager.SeasonRequest) manager.SeasonMetadata
	ListSeasons(ctx context.Context, seriesID string, filter manager.FilterMode, lang string) ([]manager.SeasonMetadata, error)
}

type ShowCache interface {
	Invalidate(seriesID string) int
	InvalidateAll()
}

type JobScheduler interface {
	CreateJob(ctx context.Context, jobType storage.JobType) (int64, error)
	CancelJob(ctx context.Context, jobID int64) error
}

// Deps are the collaborators the HTTP surface forwards to
type Deps struct {
	Seasons   SeasonProvider
	Shows     ShowCache
	Scheduler JobScheduler
	Jobs      storage.JobStorage
	Store     host.Store
	Bus       host.Bus
	Gatherer  prometheus.Gatherer
}

// Server exposes season metadata, event intake and job control over HTTP
type Server struct {
	baseLogger *zap.SugaredLogger
	deps       Deps
	validate   *validator.Validate
}

func New(logger *zap.SugaredLogger, deps Deps) Server {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	return Server{
		baseLogger: logger,
		deps:       deps,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, err error) error {
	return writeResponse(w, status, GenericResponse{
		Error: err.Error(),
	})
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

// decodeBody reads a JSON request body into out and validates it
func (s Server) decodeBody(r *http.Request, out any) error {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			logger.FromCtx(r.Context()).Debugw("invalid request body", zap.ByteString("body", b))
			return fmt.Errorf("invalid request body: %w", err)
		}
	}
	if err := s.validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// Router builds the full handler tree
func (s Server) Router() http.Handler {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)
	rtr.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := rtr.PathPrefix("/api").Subrouter()

	v1 := api.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/series/{seriesID}/seasons", s.ListSeasons()).Methods(http.MethodGet)
	v1.HandleFunc("/series/{seriesID}/seasons/{season}", s.GetSeason()).Methods(http.MethodGet)

	v1.HandleFunc("/items/{id}", s.GetItem()).Methods(http.MethodGet)
	v1.HandleFunc("/items/{id}", s.SaveItem()).Methods(http.MethodPut)
	v1.HandleFunc("/items/{id}/providers", s.SetProviderIDs()).Methods(http.MethodPut)

	v1.HandleFunc("/events", s.PublishEvent()).Methods(http.MethodPost)
	v1.HandleFunc("/cache/invalidate", s.InvalidateCache()).Methods(http.MethodPost)

	v1.HandleFunc("/jobs", s.ListJobs()).Methods(http.MethodGet)
	v1.HandleFunc("/jobs", s.CreateJob()).Methods(http.MethodPost)
	v1.HandleFunc("/jobs/{id}", s.CancelJob()).Methods(http.MethodDelete)

	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.baseLogger}),
		handlers.PrintRecoveryStack(true),
	)(rtr)

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
	)(recovered)
}

// Serve starts the http server and blocks until ctx is done
func (s Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.baseLogger.Infow("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*3)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// Healthz reports that the server is up
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := GenericResponse{
			Response: "ok",
		}
		writeResponse(w, http.StatusOK, response)
	}
}
