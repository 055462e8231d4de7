package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/manager"
	"go.uber.org/zap"
)

// GetSeason projects one season of the show containing a series. A season
// that cannot be projected is still a 200 with hasMetadata=false. With an
// itemID the projected season is stored under that id.
func (s Server) GetSeason() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		vars := mux.Vars(r)
		qps := r.URL.Query()

		season, err := strconv.Atoi(vars["season"])
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Errorf("invalid season number %q", vars["season"]))
			return
		}

		filter, err := manager.ParseFilterMode(qps.Get("filter"))
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		req := manager.SeasonRequest{
			SeriesID:     vars["seriesID"],
			SeasonNumber: &season,
			Filter:       filter,
			Language:     qps.Get("language"),
		}

		if raw := qps.Get("itemID"); raw != "" {
			itemID, err := uuid.Parse(raw)
			if err != nil {
				writeErrorResponse(w, http.StatusBadRequest, fmt.Errorf("invalid itemID: %w", err))
				return
			}
			existing, err := s.deps.Store.GetItem(r.Context(), itemID)
			switch {
			case errors.Is(err, host.ErrNotFound):
				log.Debugw("season item not stored yet", zap.String("item_id", raw))
				req.Existing = &host.Item{ID: itemID, Kind: host.KindSeason}
			case err != nil:
				log.Errorw("failed to load season item", zap.String("item_id", raw), zap.Error(err))
				writeErrorResponse(w, http.StatusInternalServerError, err)
				return
			default:
				req.Existing = existing
			}
		}

		md := s.deps.Seasons.GetSeasonMetadata(r.Context(), req)
		if req.Existing != nil && md.HasMetadata {
			if err := s.deps.Store.SaveItem(r.Context(), md.Item()); err != nil {
				log.Errorw("failed to store season item", zap.String("item_id", req.Existing.ID.String()), zap.Error(err))
			}
		}
		if err := writeResponse(w, http.StatusOK, GenericResponse{Response: md}); err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

// ListSeasons lists every season the show containing a series presents
func (s Server) ListSeasons() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		qps := r.URL.Query()

		filter, err := manager.ParseFilterMode(qps.Get("filter"))
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		seasons, err := s.deps.Seasons.ListSeasons(r.Context(), mux.Vars(r)["seriesID"], filter, qps.Get("language"))
		if errors.Is(err, manager.ErrShowNotFound) {
			writeErrorResponse(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			log.Errorw("failed to list seasons", zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		if err := writeResponse(w, http.StatusOK, GenericResponse{Response: seasons}); err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}
