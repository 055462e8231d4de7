package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"go.uber.org/zap"
)

// SaveItemRequest is a host library item as the host reports it. The id comes from the path.
type SaveItemRequest struct {
	Kind            host.Kind         `json:"kind" validate:"required,oneof=video season series"`
	ParentID        *uuid.UUID        `json:"parentId,omitempty"`
	Name            string            `json:"name"`
	IndexNumber     *int              `json:"indexNumber,omitempty" validate:"omitempty,gte=0"`
	PresentationKey string            `json:"presentationKey,omitempty"`
	ProviderIDs     map[string]string `json:"providerIds,omitempty"`
}

type SetProviderIDsRequest struct {
	ProviderIDs map[string]string `json:"providerIds" validate:"required"`
}

func itemID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid item id %q: %w", raw, err)
	}
	return id, nil
}

// SaveItem creates or replaces a host item
func (s Server) SaveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		id, err := itemID(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		var request SaveItemRequest
		if err := s.decodeBody(r, &request); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		item := host.Item{
			ID:              id,
			Kind:            request.Kind,
			ParentID:        request.ParentID,
			Name:            request.Name,
			IndexNumber:     request.IndexNumber,
			PresentationKey: request.PresentationKey,
			ProviderIDs:     request.ProviderIDs,
		}
		if err := s.deps.Store.SaveItem(r.Context(), item); err != nil {
			log.Errorw("failed to save item", zap.String("item_id", id.String()), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		s.writeItem(w, r, id)
	}
}

func (s Server) GetItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}
		s.writeItem(w, r, id)
	}
}

// SetProviderIDs replaces the provider ids of a stored item
func (s Server) SetProviderIDs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		var request SetProviderIDsRequest
		if err := s.decodeBody(r, &request); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		err = s.deps.Store.SetProviderIDs(r.Context(), id, request.ProviderIDs)
		if errors.Is(err, host.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			logger.FromCtx(r.Context()).Errorw("failed to set provider ids", zap.String("item_id", id.String()), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		s.writeItem(w, r, id)
	}
}

func (s Server) writeItem(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	item, err := s.deps.Store.GetItem(r.Context(), id)
	if errors.Is(err, host.ErrNotFound) {
		writeErrorResponse(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if err := writeResponse(w, http.StatusOK, GenericResponse{Response: item}); err != nil {
		logger.FromCtx(r.Context()).Errorw("failed to write response", zap.Error(err))
	}
}
