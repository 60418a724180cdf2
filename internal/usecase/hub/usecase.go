package hub

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bale2838/Tetris/internal/config"
	"github.com/bale2838/Tetris/internal/domain"
	"github.com/bale2838/Tetris/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrSessionBusy = errors.New("session already has a connected client")

const detachTimeout = time.Second

type entry struct {
	session   domain.SessionUseCase
	cancel    context.CancelFunc
	connected *atomic.Bool
	lastSeen  *atomic.Time
}

type useCase struct {
	newSession  domain.SessionFactory
	sessions    map[string]*entry
	ctx         context.Context
	cancel      context.CancelFunc
	group       *errgroup.Group
	ticker      *time.Ticker
	idleTimeout time.Duration
	mu          *sync.RWMutex
	logger      *zap.Logger
}

func New(newSession domain.SessionFactory, cfg config.SessionConfig, logger *zap.Logger) *useCase {
	ctx, cancel := context.WithCancel(context.Background())
	u := &useCase{
		newSession:  newSession,
		sessions:    make(map[string]*entry),
		ctx:         ctx,
		cancel:      cancel,
		group:       new(errgroup.Group),
		ticker:      time.NewTicker(cfg.JanitorPeriod),
		idleTimeout: cfg.IdleTimeout,
		mu:          &sync.RWMutex{},
		logger:      logger,
	}
	go u.removeIdleSessions()
	return u
}

// Handle attaches client to its session, creating one for an unknown key, and
// pumps commands in and updates out until the client goes away.
func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	e, resumed, err := u.attach(client.Key())
	if err != nil {
		return errors.WithMessage(err, "attach client")
	}
	defer u.detach(e)

	e.session.DropPending()
	if err := u.greet(ctx, client, e.session, resumed); err != nil {
		return errors.WithMessage(err, "greet client")
	}
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return u.readCommands(gctx, client, e)
	})
	group.Go(func() error {
		return u.writeUpdates(gctx, client, e.session)
	})
	group.Go(func() error {
		select {
		case <-gctx.Done():
		case <-u.ctx.Done():
		}
		client.Close()
		return nil
	})
	err = group.Wait()
	switch {
	case errors.Is(err, domain.ErrConnectionClosed):
		return nil
	case err != nil:
		return errors.WithMessage(err, "serve client")
	}
	return nil
}

func (u *useCase) attach(key string) (*entry, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if key != "" {
		if e, ok := u.sessions[key]; ok {
			if !e.connected.CompareAndSwap(false, true) {
				return nil, false, errors.WithMessagef(ErrSessionBusy, "session '%s'", key)
			}
			e.lastSeen.Store(time.Now())
			u.logger.Info("resumed session", zap.String("session", key))
			return e, true, nil
		}
	} else {
		key = uuid.NewString()
	}
	ctx, cancel := context.WithCancel(u.ctx)
	e := &entry{
		session:   u.newSession(key),
		cancel:    cancel,
		connected: atomic.NewBool(true),
		lastSeen:  atomic.NewTime(time.Now()),
	}
	u.sessions[key] = e
	u.group.Go(func() error {
		return e.session.Run(ctx)
	})
	u.logger.Info("created session", zap.String("session", key), zap.Int("sessions", len(u.sessions)))
	return e, false, nil
}

// detach pauses a running game so a dropped connection does not cost the player.
func (u *useCase) detach(e *entry) {
	e.lastSeen.Store(time.Now())
	defer e.connected.Store(false)
	ctx, cancel := context.WithTimeout(u.ctx, detachTimeout)
	defer cancel()
	snap, err := e.session.Snapshot(ctx)
	if err != nil {
		u.logger.Warn(err.Error(), zap.String("session", e.session.Id()))
		return
	}
	if snap.State != domain.Playing {
		return
	}
	if err := e.session.Submit(ctx, domain.PauseCommand); err != nil {
		u.logger.Warn(err.Error(), zap.String("session", e.session.Id()))
	}
}

func (u *useCase) greet(ctx context.Context, client domain.Client, session domain.SessionUseCase, resumed bool) error {
	err := client.WriteMessage(domain.Message{
		Type:    domain.WelcomeMessage,
		Payload: domain.WelcomePayload{SessionId: session.Id(), Resumed: resumed},
	})
	if err != nil {
		return errors.WithMessage(err, "send welcome message")
	}
	snap, err := session.Snapshot(ctx)
	if err != nil {
		return errors.WithMessage(err, "take snapshot")
	}
	if err := client.WriteMessage(domain.Message{Type: domain.SnapshotMessage, Payload: snap}); err != nil {
		return errors.WithMessage(err, "send snapshot message")
	}
	return nil
}

func (u *useCase) readCommands(ctx context.Context, client domain.Client, e *entry) error {
	for {
		msg, err := client.ReadMessage()
		if err != nil {
			return errors.WithMessage(err, "read message from client")
		}
		e.lastSeen.Store(time.Now())
		if msg.Type != domain.CommandMessage {
			u.logger.Warn("unexpected message type", zap.Stringer("type", msg.Type))
			continue
		}
		payload, err := utils.DecodePayload[domain.CommandPayload](msg.Payload)
		if err != nil {
			u.logger.Warn(err.Error())
			continue
		}
		if err := e.session.Submit(ctx, payload.Command); err != nil {
			return errors.WithMessage(err, "submit command")
		}
	}
}

func (u *useCase) writeUpdates(ctx context.Context, client domain.Client, session domain.SessionUseCase) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-session.Updates():
			if err := client.WriteMessage(msg); err != nil {
				return errors.WithMessage(err, "send update to client")
			}
		}
	}
}

func (u *useCase) Sessions() []domain.SessionInfo {
	u.mu.RLock()
	defer u.mu.RUnlock()
	infos := make([]domain.SessionInfo, 0, len(u.sessions))
	for id, e := range u.sessions {
		infos = append(infos, domain.SessionInfo{
			Id:        id,
			Connected: e.connected.Load(),
			LastSeen:  e.lastSeen.Load(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Id < infos[j].Id
	})
	return infos
}

func (u *useCase) removeIdleSessions() {
	for {
		select {
		case <-u.ctx.Done():
			return
		case now := <-u.ticker.C:
			u.removeIdle(now)
		}
	}
}

func (u *useCase) removeIdle(now time.Time) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	removed := 0
	for id, e := range u.sessions {
		if e.connected.Load() || now.Sub(e.lastSeen.Load()) < u.idleTimeout {
			continue
		}
		e.cancel()
		delete(u.sessions, id)
		removed++
		u.logger.Info("removed idle session", zap.String("session", id))
	}
	return removed
}

// Close stops every session, disconnects their clients and waits for the
// session loops to return.
func (u *useCase) Close() error {
	u.ticker.Stop()
	u.cancel()
	if err := u.group.Wait(); err != nil {
		return errors.WithMessage(err, "stop sessions")
	}
	return nil
}
