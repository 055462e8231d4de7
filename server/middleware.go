package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kasuboski/shokoz/pkg/logger"
	"go.uber.org/zap"
)

func (s Server) LogMiddleware() mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := s.baseLogger.With(zap.String("request_path", r.URL.Path)).With(zap.String("id", uuid.New().String()))
			h.ServeHTTP(w, r.WithContext(logger.WithCtx(r.Context(), log)))
		})
	}
}

// recoveryLogger lets gorilla's recovery handler log through zap
type recoveryLogger struct {
	log *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Errorw("recovered from handler panic", zap.String("panic", fmt.Sprint(v...)))
}
