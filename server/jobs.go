package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/manager"
	"github.com/kasuboski/shokoz/pkg/pagination"
	"github.com/kasuboski/shokoz/pkg/storage"
	"go.uber.org/zap"
)

type ListJobsResponse struct {
	Jobs []*storage.Job  `json:"jobs"`
	Meta pagination.Meta `json:"meta"`
}

type CreateJobRequest struct {
	Type storage.JobType `json:"type" validate:"required"`
}

type CreateJobResponse struct {
	ID int64 `json:"id"`
}

// ListJobs lists jobs in creation order, optionally paged with page and pageSize
func (s Server) ListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		params, err := ParsePaginationParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		jobs, err := s.deps.Jobs.ListJobs(r.Context())
		if err != nil {
			log.Errorw("failed to list jobs", zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		page, meta := pagination.Apply(params, jobs)
		writeResponse(w, http.StatusOK, GenericResponse{Response: ListJobsResponse{Jobs: page, Meta: meta}})
	}
}

func (s Server) CreateJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request CreateJobRequest
		if err := s.decodeBody(r, &request); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		id, err := s.deps.Scheduler.CreateJob(r.Context(), request.Type)
		switch {
		case errors.Is(err, manager.ErrUnknownJobType):
			writeErrorResponse(w, http.StatusBadRequest, err)
		case errors.Is(err, storage.ErrJobAlreadyPending):
			writeErrorResponse(w, http.StatusConflict, err)
		case err != nil:
			logger.FromCtx(r.Context()).Errorw("failed to create job", zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
		default:
			writeResponse(w, http.StatusCreated, GenericResponse{Response: CreateJobResponse{ID: id}})
		}
	}
}

func (s Server) CancelJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := mux.Vars(r)["id"]
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Errorf("invalid job id %q", raw))
			return
		}

		err = s.deps.Scheduler.CancelJob(r.Context(), id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeErrorResponse(w, http.StatusNotFound, err)
		case err != nil:
			logger.FromCtx(r.Context()).Errorw("failed to cancel job", zap.Int64("job_id", id), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
		default:
			writeResponse(w, http.StatusOK, GenericResponse{Response: "cancelled"})
		}
	}
}
