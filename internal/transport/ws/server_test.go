package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bale2838/Tetris/internal/adapters/webapi"
	"github.com/bale2838/Tetris/internal/config"
	"github.com/bale2838/Tetris/internal/domain"
	"github.com/bale2838/Tetris/internal/usecase/game"
	"github.com/bale2838/Tetris/internal/usecase/hub"
	"github.com/bale2838/Tetris/internal/usecase/session"
	"github.com/bale2838/Tetris/pkg/utils"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	rules := domain.DefaultRules()
	rules.BaseInterval = time.Hour
	cfg := config.Default().Session
	h := hub.New(session.NewFactory(game.NewFactory(rules, logger), cfg.UpdatesBuffer, logger), cfg, logger)
	ts := httptest.NewServer(New(":0", h, logger).Handler())
	t.Cleanup(func() {
		assert.NoError(t, h.Close())
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server, key string) (*websocket.Conn, domain.WelcomePayload, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game"
	header := http.Header{}
	header.Set(domain.ClientKeyHeader, key)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, domain.WelcomePayload{}, err
	}
	var msg domain.Message
	if err := conn.ReadJSON(&msg); err != nil {
		_ = conn.Close()
		return nil, domain.WelcomePayload{}, err
	}
	welcome, err := utils.DecodePayload[domain.WelcomePayload](msg.Payload)
	if err != nil {
		_ = conn.Close()
		return nil, domain.WelcomePayload{}, err
	}
	return conn, welcome, nil
}

func readSnapshot(t *testing.T, conn *websocket.Conn, until func(domain.Snapshot) bool) domain.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg domain.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != domain.SnapshotMessage {
			continue
		}
		snap, err := utils.DecodePayload[domain.Snapshot](msg.Payload)
		require.NoError(t, err)
		require.NoError(t, snap.ParseRows())
		if until(snap) {
			return snap
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, cmd domain.Command) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.CommandMessage,
		Payload: domain.CommandPayload{Command: cmd},
	}))
}

func TestPlayOverWebsocket(t *testing.T) {
	ts := newTestServer(t)

	conn, welcome, err := dial(t, ts, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "player-1", welcome.SessionId)
	assert.False(t, welcome.Resumed)

	initial := readSnapshot(t, conn, func(domain.Snapshot) bool { return true })
	assert.Equal(t, domain.NotStarted, initial.State)
	assert.Len(t, initial.Rows, 22)

	send(t, conn, domain.StartCommand)
	playing := readSnapshot(t, conn, func(s domain.Snapshot) bool { return s.State == domain.Playing })
	require.NotNil(t, playing.Active)

	send(t, conn, domain.HardDropCommand)
	dropped := readSnapshot(t, conn, func(s domain.Snapshot) bool {
		for _, k := range s.Cells[:s.Width] {
			if k != domain.Empty {
				return true
			}
		}
		return false
	})
	assert.Equal(t, domain.Playing, dropped.State)
	assert.Equal(t, time.Hour, dropped.Interval)
	require.NoError(t, conn.Close())

	t.Run("reconnect resumes a paused session", func(t *testing.T) {
		var resumed *websocket.Conn
		require.Eventually(t, func() bool {
			c, w, err := dial(t, ts, "player-1")
			if err != nil {
				return false
			}
			if !w.Resumed {
				_ = c.Close()
				return false
			}
			resumed = c
			return true
		}, 2*time.Second, 20*time.Millisecond)
		defer func() {
			_ = resumed.Close()
		}()

		snap := readSnapshot(t, resumed, func(domain.Snapshot) bool { return true })
		assert.Equal(t, domain.Paused, snap.State)
		assert.Equal(t, dropped.Rows, snap.Rows)
	})

	t.Run("health and sessions", func(t *testing.T) {
		ctx := context.Background()
		repo := webapi.New()
		health, err := repo.HealthCheck(ctx, ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, 1, health.Sessions)

		sessions, err := repo.Sessions(ctx, ts.URL)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "player-1", sessions[0].Id)
	})
}

func TestAnonymousClientGetsSessionId(t *testing.T) {
	ts := newTestServer(t)

	conn, welcome, err := dial(t, ts, "")
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()
	assert.Len(t, welcome.SessionId, 36)
	assert.False(t, welcome.Resumed)
}

func TestSecondConnectionIsRejected(t *testing.T) {
	ts := newTestServer(t)

	first, _, err := dial(t, ts, "busy")
	require.NoError(t, err)
	defer func() {
		_ = first.Close()
	}()

	_, _, err = dial(t, ts, "busy")
	assert.Error(t, err)
}

func TestShutdownReportsOnlyRealErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := config.Default().Session
	h := hub.New(session.NewFactory(game.NewFactory(domain.DefaultRules(), logger), cfg.UpdatesBuffer, logger), cfg, logger)
	s := New(":0", h, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
