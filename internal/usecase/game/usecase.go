package game

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/bale2838/Tetris/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type activePiece struct {
	piece domain.Tetromino
	x     int
	y     int
}

// useCase is the engine of one play session. It is not safe for concurrent
// use; the host serializes ticks and commands onto a single goroutine.
type useCase struct {
	rules         domain.Rules
	grid          *domain.Grid
	active        *activePiece
	interval      time.Duration
	lines         int
	state         domain.State
	spawnDeferred bool
	clock         domain.Clock
	notifier      domain.Notifier
	random        domain.Randomizer
	logger        *zap.Logger
}

func New(rules domain.Rules, clock domain.Clock, notifier domain.Notifier,
	random domain.Randomizer, logger *zap.Logger) *useCase {
	return &useCase{
		rules:    rules,
		grid:     domain.NewGrid(rules.Width, rules.Height),
		interval: rules.BaseInterval,
		state:    domain.NotStarted,
		clock:    clock,
		notifier: notifier,
		random:   random,
		logger:   logger,
	}
}

// NewFactory returns a constructor of independently seeded sessions.
func NewFactory(rules domain.Rules, logger *zap.Logger) domain.GameFactory {
	return func(clock domain.Clock, notifier domain.Notifier) domain.GameUseCase {
		random := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		return New(rules, clock, notifier, random, logger)
	}
}

func (u *useCase) BeginSession() bool {
	if u.state != domain.NotStarted {
		return false
	}
	u.notifier.PlayCue()
	u.reset()
	return true
}

func (u *useCase) Restart() {
	u.notifier.PlayCue()
	u.reset()
}

func (u *useCase) reset() {
	u.grid = domain.NewGrid(u.rules.Width, u.rules.Height)
	u.active = nil
	u.lines = 0
	u.spawnDeferred = false
	u.interval = u.rules.BaseInterval
	u.state = domain.Playing
	u.notifier.StatusChanged(strconv.Itoa(u.lines))
	u.clock.Reschedule(u.interval)
	u.spawn()
}

func (u *useCase) Pause() bool {
	switch u.state {
	case domain.Playing:
		u.state = domain.Paused
		u.clock.Stop()
		u.notifier.PlayCue()
		u.notifier.StatusChanged(domain.PausedStatus)
	case domain.Paused:
		u.state = domain.Playing
		u.clock.Reschedule(u.interval)
		u.notifier.PlayCue()
		u.notifier.StatusChanged(strconv.Itoa(u.lines))
	default:
		return false
	}
	return true
}

// Tick advances gravity by one row, or spawns the piece deferred by a line clear.
func (u *useCase) Tick() {
	if u.state != domain.Playing {
		return
	}
	if u.spawnDeferred {
		u.spawnDeferred = false
		u.spawn()
		return
	}
	if u.active == nil {
		return
	}
	u.oneLineDown()
}

func (u *useCase) MoveLeft() bool {
	return u.shift(-1)
}

func (u *useCase) MoveRight() bool {
	return u.shift(1)
}

// SoftDrop moves the piece one row down and reports whether it moved. A piece
// that cannot descend is locked, as on a gravity tick.
func (u *useCase) SoftDrop() bool {
	if !u.controllable() {
		return false
	}
	return u.oneLineDown()
}

func (u *useCase) RotateClockwise() bool {
	if !u.controllable() {
		return false
	}
	return u.tryMove(u.active.piece.RotateRight(), u.active.x, u.active.y)
}

func (u *useCase) RotateCounterclockwise() bool {
	if !u.controllable() {
		return false
	}
	return u.tryMove(u.active.piece.RotateLeft(), u.active.x, u.active.y)
}

func (u *useCase) HardDrop() bool {
	if !u.controllable() {
		return false
	}
	for u.tryMove(u.active.piece, u.active.x, u.active.y-1) {
	}
	u.lock()
	return true
}

func (u *useCase) Execute(cmd domain.Command) (bool, error) {
	switch cmd {
	case domain.StartCommand:
		return u.BeginSession(), nil
	case domain.PauseCommand:
		return u.Pause(), nil
	case domain.RestartCommand:
		u.Restart()
		return true, nil
	case domain.LeftCommand:
		return u.MoveLeft(), nil
	case domain.RightCommand:
		return u.MoveRight(), nil
	case domain.SoftDropCommand:
		return u.SoftDrop(), nil
	case domain.RotateCWCommand:
		return u.RotateClockwise(), nil
	case domain.RotateCCWCommand:
		return u.RotateCounterclockwise(), nil
	case domain.HardDropCommand:
		return u.HardDrop(), nil
	default:
		return false, errors.WithMessagef(ErrUnknownCommand, "'%s'", cmd)
	}
}

func (u *useCase) Snapshot() domain.Snapshot {
	s := domain.NewSnapshot(u.grid)
	s.State = u.state
	s.Lines = u.lines
	s.Interval = u.interval
	if u.active != nil {
		s.Active = &domain.ActivePiece{
			Kind:  u.active.piece.Kind(),
			Cells: u.active.piece.Cells(u.active.x, u.active.y),
		}
	}
	return s
}

func (u *useCase) controllable() bool {
	return u.state == domain.Playing && u.active != nil
}

func (u *useCase) shift(dx int) bool {
	if !u.controllable() {
		return false
	}
	return u.tryMove(u.active.piece, u.active.x+dx, u.active.y)
}

func (u *useCase) oneLineDown() bool {
	if u.tryMove(u.active.piece, u.active.x, u.active.y-1) {
		return true
	}
	u.lock()
	return false
}

// tryMove commits piece at (x, y) when all four cells are inside the grid and
// empty. On failure nothing changes.
func (u *useCase) tryMove(piece domain.Tetromino, x, y int) bool {
	for _, c := range piece.Cells(x, y) {
		if !u.grid.Contains(c.X, c.Y) {
			return false
		}
		if u.grid.CellAt(c.X, c.Y) != domain.Empty {
			return false
		}
	}
	u.active = &activePiece{piece: piece, x: x, y: y}
	return true
}

func (u *useCase) lock() {
	p := u.active
	kind := p.piece.Kind()
	for _, c := range p.piece.Cells(p.x, p.y) {
		u.grid.Set(c.X, c.Y, kind)
	}
	u.active = nil
	cleared := u.removeFullLines()
	u.logger.Debug("piece locked",
		zap.Stringer("kind", kind),
		zap.Int("x", p.x),
		zap.Int("y", p.y),
		zap.Int("cleared", cleared))
	if !u.spawnDeferred {
		u.spawn()
	}
}

// removeFullLines clears every full row found by a single scan and returns
// how many were removed. Rows are compacted from the top down so the indices
// of the remaining full rows stay valid.
func (u *useCase) removeFullLines() int {
	var full []int
	for y := u.grid.Height() - 1; y >= 0; y-- {
		if u.rowFull(y) {
			full = append(full, y)
		}
	}
	if len(full) == 0 {
		return 0
	}
	before := u.interval
	removed := 0
	for _, y := range full {
		removed++
		u.collapse(y)
		u.speedUp()
	}
	if u.interval != before {
		u.clock.Reschedule(u.interval)
		u.logger.Debug("speed changed", zap.Duration("interval", u.interval))
	}
	u.lines += removed
	u.spawnDeferred = true
	u.notifier.StatusChanged(strconv.Itoa(u.lines))
	return removed
}

func (u *useCase) rowFull(y int) bool {
	for x := 0; x < u.grid.Width(); x++ {
		if u.grid.CellAt(x, y) == domain.Empty {
			return false
		}
	}
	return true
}

// collapse drops every row above y by one and blanks the top row.
func (u *useCase) collapse(y int) {
	top := u.grid.Height() - 1
	for k := y; k < top; k++ {
		for x := 0; x < u.grid.Width(); x++ {
			u.grid.Set(x, k, u.grid.CellAt(x, k+1))
		}
	}
	for x := 0; x < u.grid.Width(); x++ {
		u.grid.Set(x, top, domain.Empty)
	}
}

func (u *useCase) speedUp() {
	if u.interval-u.rules.IntervalStep >= u.rules.IntervalFloor {
		u.interval -= u.rules.IntervalStep
	}
}

func (u *useCase) spawn() {
	piece := domain.SpawnRandom(u.random)
	x := u.rules.Width/2 + 1
	y := u.rules.Height - 1 + piece.MinY()
	if u.lines >= u.rules.LineCap || !u.tryMove(piece, x, y) {
		u.gameOver()
	}
}

func (u *useCase) gameOver() {
	u.clock.Stop()
	u.state = domain.GameOver
	u.active = nil
	u.spawnDeferred = false
	u.notifier.StatusChanged(domain.GameOverStatus)
	u.logger.Debug("game over", zap.Int("lines", u.lines))
}
