package session

import (
	"context"

	"github.com/bale2838/Tetris/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type useCase struct {
	id        string
	game      domain.GameUseCase
	clock     *tickerClock
	commands  chan domain.Command
	snapshots chan chan domain.Snapshot
	updates   chan domain.Message
	done      chan struct{}
	dropped   *atomic.Int64
	logger    *zap.Logger
}

func New(id string, newGame domain.GameFactory, updatesBuf int, logger *zap.Logger) *useCase {
	u := &useCase{
		id:        id,
		clock:     newTickerClock(),
		commands:  make(chan domain.Command),
		snapshots: make(chan chan domain.Snapshot),
		updates:   make(chan domain.Message, updatesBuf),
		done:      make(chan struct{}),
		dropped:   atomic.NewInt64(0),
		logger:    logger.With(zap.String("session", id)),
	}
	u.game = newGame(u.clock, notifier{u})
	return u
}

func NewFactory(newGame domain.GameFactory, updatesBuf int, logger *zap.Logger) domain.SessionFactory {
	return func(id string) domain.SessionUseCase {
		return New(id, newGame, updatesBuf, logger)
	}
}

func (u *useCase) Id() string {
	return u.id
}

// Run feeds commands and clock ticks to the game one at a time until ctx is done.
func (u *useCase) Run(ctx context.Context) error {
	defer close(u.done)
	defer u.clock.Stop()
	u.logger.Info("session started")
	for {
		select {
		case <-ctx.Done():
			u.logger.Info("session stopped", zap.Int64("dropped updates", u.dropped.Load()))
			return nil
		case cmd := <-u.commands:
			if _, err := u.game.Execute(cmd); err != nil {
				u.logger.Warn(err.Error())
				continue
			}
			u.publishSnapshot()
		case reply := <-u.snapshots:
			reply <- u.game.Snapshot()
		case <-u.clock.C():
			u.game.Tick()
			u.publishSnapshot()
		}
	}
}

func (u *useCase) Submit(ctx context.Context, cmd domain.Command) error {
	select {
	case u.commands <- cmd:
		return nil
	case <-u.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return errors.WithMessage(ctx.Err(), "submit command")
	}
}

func (u *useCase) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	reply := make(chan domain.Snapshot, 1)
	select {
	case u.snapshots <- reply:
	case <-u.done:
		return domain.Snapshot{}, domain.ErrSessionClosed
	case <-ctx.Done():
		return domain.Snapshot{}, errors.WithMessage(ctx.Err(), "request snapshot")
	}
	return <-reply, nil
}

func (u *useCase) Updates() <-chan domain.Message {
	return u.updates
}

// DropPending discards buffered updates nobody read, returning how many.
func (u *useCase) DropPending() int {
	n := 0
	for {
		select {
		case <-u.updates:
			n++
		default:
			return n
		}
	}
}

func (u *useCase) publishSnapshot() {
	u.publish(domain.Message{
		Type:    domain.SnapshotMessage,
		Payload: u.game.Snapshot(),
	})
}

// publish never blocks the game loop; a reader that falls behind loses frames.
func (u *useCase) publish(msg domain.Message) {
	select {
	case u.updates <- msg:
	default:
		u.dropped.Inc()
	}
}

type notifier struct {
	u *useCase
}

func (n notifier) StatusChanged(text string) {
	n.u.publish(domain.Message{
		Type:    domain.StatusMessage,
		Payload: domain.StatusPayload{Text: text},
	})
}

func (n notifier) PlayCue() {
	n.u.publish(domain.Message{Type: domain.CueMessage})
}
