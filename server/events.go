package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"go.uber.org/zap"
)

var errEventMismatch = errors.New("event payload does not match the event")

// PublishEvent accepts a host event and hands it to the bus subscribers. An
// item or user data carried by the event is stored first so subscribers read
// the new state. Sync work is queued, so the response does not wait on Shoko.
func (s Server) PublishEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event host.Event
		if err := s.decodeBody(r, &event); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		if err := s.persistEvent(r.Context(), &event); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, errEventMismatch) {
				status = http.StatusBadRequest
			} else {
				logger.FromCtx(r.Context()).Errorw("failed to store event payload", zap.Error(err))
			}
			writeErrorResponse(w, status, err)
			return
		}

		logger.FromCtx(r.Context()).Debugw("publishing host event",
			zap.String("event", string(event.Type)),
			zap.String("reason", string(event.Reason)),
			zap.String("item_id", event.ItemID.String()))

		s.deps.Bus.Publish(r.Context(), event)
		writeResponse(w, http.StatusAccepted, GenericResponse{Response: "accepted"})
	}
}

// persistEvent saves the payload of an event and fills ids the payload leaves empty
func (s Server) persistEvent(ctx context.Context, event *host.Event) error {
	switch event.Type {
	case host.EventItemAdded, host.EventItemUpdated:
		if event.Item == nil {
			return nil
		}
		if err := fillID(&event.Item.ID, &event.ItemID); err != nil {
			return fmt.Errorf("%w: item id: %w", errEventMismatch, err)
		}
		if !event.Item.Kind.Valid() {
			return fmt.Errorf("%w: invalid item kind %q", errEventMismatch, event.Item.Kind)
		}
		if err := s.deps.Store.SaveItem(ctx, *event.Item); err != nil {
			return fmt.Errorf("failed to save item %s: %w", event.ItemID, err)
		}

	case host.EventUserDataSaved:
		if event.UserData == nil {
			return nil
		}
		if err := fillID(&event.UserData.ItemID, &event.ItemID); err != nil {
			return fmt.Errorf("%w: item id: %w", errEventMismatch, err)
		}
		if err := fillID(&event.UserData.UserID, &event.UserID); err != nil {
			return fmt.Errorf("%w: user id: %w", errEventMismatch, err)
		}
		if err := s.deps.Store.SaveUserData(ctx, *event.UserData); err != nil {
			return fmt.Errorf("failed to save user data for item %s: %w", event.ItemID, err)
		}
	}
	return nil
}

// fillID makes payload and event agree on one id. Either side may be empty.
func fillID(payload, event *uuid.UUID) error {
	switch {
	case *payload == uuid.Nil && *event == uuid.Nil:
		return errors.New("missing")
	case *payload == uuid.Nil:
		*payload = *event
	case *event == uuid.Nil:
		*event = *payload
	case *payload != *event:
		return fmt.Errorf("%s != %s", *payload, *event)
	}
	return nil
}

type InvalidateRequest struct {
	// SeriesID limits invalidation to shows containing the series. Empty clears everything.
	SeriesID string `json:"seriesId" validate:"omitempty,numeric"`
}

type InvalidateResponse struct {
	Dropped int  `json:"dropped"`
	All     bool `json:"all"`
}

func (s Server) InvalidateCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request InvalidateRequest
		if err := s.decodeBody(r, &request); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		if request.SeriesID == "" {
			s.deps.Shows.InvalidateAll()
			writeResponse(w, http.StatusOK, GenericResponse{Response: InvalidateResponse{All: true}})
			return
		}

		dropped := s.deps.Shows.Invalidate(request.SeriesID)
		logger.FromCtx(r.Context()).Debugw("invalidated show cache", zap.String("series_id", request.SeriesID), zap.Int("dropped", dropped))
		writeResponse(w, http.StatusOK, GenericResponse{Response: InvalidateResponse{Dropped: dropped}})
	}
}
