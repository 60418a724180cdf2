package ws

import (
	"net/http"
	"strings"

	"github.com/bale2838/Tetris/internal/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const healthyStatus = "ok"

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(domain.ClientKeyHeader))
	s.logger.Info("new connection", zap.String("client key", key), zap.String("remote", r.RemoteAddr))
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err.Error())
		return
	}
	client := newClient(conn, key)
	defer client.Close()
	err = s.hub.Handle(r.Context(), client)
	switch {
	case errors.Is(err, domain.ErrSessionClosed):
		s.logger.Info("session closed while serving client", zap.String("client key", key))
	case err != nil:
		s.logger.Error(err.Error(), zap.String("client key", key))
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	resp := domain.HealthCheckResponse{
		Status:   healthyStatus,
		Sessions: len(s.hub.Sessions()),
	}
	s.writeJson(w, resp)
}

func (s *server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, s.hub.Sessions())
}

func (s *server) writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn(err.Error())
	}
}
