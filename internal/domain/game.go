package domain

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type State byte

const (
	NotStarted = State(iota)
	Playing
	Paused
	GameOver
)

var stateNames = [...]string{"not_started", "playing", "paused", "game_over"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return errors.Errorf("unknown state '%s'", text)
}

const (
	PausedStatus   = "Paused"
	GameOverStatus = "PRESS [ESC] TO RESTART."
)

// Rules are the tunable constants of one play session.
type Rules struct {
	Width         int           `yaml:"board_width"`
	Height        int           `yaml:"board_height"`
	BaseInterval  time.Duration `yaml:"base_interval"`
	IntervalFloor time.Duration `yaml:"interval_floor"`
	IntervalStep  time.Duration `yaml:"interval_step"`
	LineCap       int           `yaml:"line_cap"`
}

func DefaultRules() Rules {
	return Rules{
		Width:         10,
		Height:        22,
		BaseInterval:  400 * time.Millisecond,
		IntervalFloor: 25 * time.Millisecond,
		IntervalStep:  25 * time.Millisecond,
		LineCap:       50,
	}
}

type Command string

const (
	StartCommand     = Command("start")
	PauseCommand     = Command("pause")
	RestartCommand   = Command("restart")
	LeftCommand      = Command("left")
	RightCommand     = Command("right")
	SoftDropCommand  = Command("soft_drop")
	RotateCWCommand  = Command("rotate_cw")
	RotateCCWCommand = Command("rotate_ccw")
	HardDropCommand  = Command("hard_drop")
)

// ActivePiece is the falling piece as seen by a renderer.
type ActivePiece struct {
	Kind  Kind     `json:"kind"`
	Cells [4]Point `json:"cells"`
}

// Snapshot is a read-only copy of a session. Rows holds one string per grid
// row, row 0 first, one kind letter per column.
type Snapshot struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Cells    []Kind        `json:"-"`
	Rows     []string      `json:"rows"`
	Active   *ActivePiece  `json:"active,omitempty"`
	State    State         `json:"state"`
	Lines    int           `json:"lines"`
	Interval time.Duration `json:"interval"`
}

// Clock is the host timer driving Tick. Reschedule restarts the period from now.
type Clock interface {
	Reschedule(interval time.Duration)
	Stop()
}

type Notifier interface {
	StatusChanged(text string)
	PlayCue()
}

type GameUseCase interface {
	BeginSession() bool
	Pause() bool
	Restart()
	MoveLeft() bool
	MoveRight() bool
	SoftDrop() bool
	RotateClockwise() bool
	RotateCounterclockwise() bool
	HardDrop() bool
	Tick()
	Execute(cmd Command) (bool, error)
	Snapshot() Snapshot
}

type GameFactory func(clock Clock, notifier Notifier) GameUseCase

// SessionUseCase hosts one game on its own goroutine. Run owns the game;
// every other method hands work to it.
type SessionUseCase interface {
	Id() string
	Run(ctx context.Context) error
	Submit(ctx context.Context, cmd Command) error
	Snapshot(ctx context.Context) (Snapshot, error)
	Updates() <-chan Message
	DropPending() int
}

type SessionFactory func(id string) SessionUseCase

func (s Snapshot) CellAt(x, y int) Kind {
	return s.Cells[x+y*s.Width]
}

func rowsOf(cells []Kind, width int) []string {
	rows := make([]string, 0, len(cells)/width)
	var b strings.Builder
	for y := 0; y*width < len(cells); y++ {
		b.Reset()
		for _, k := range cells[y*width : (y+1)*width] {
			b.WriteString(k.String())
		}
		rows = append(rows, b.String())
	}
	return rows
}

// NewSnapshot copies the grid into a snapshot; the caller fills the session fields.
func NewSnapshot(g *Grid) Snapshot {
	cells := g.Cells()
	return Snapshot{
		Width:  g.Width(),
		Height: g.Height(),
		Cells:  cells,
		Rows:   rowsOf(cells, g.Width()),
	}
}

// ParseRows rebuilds Cells from Rows after the snapshot crossed the wire.
func (s *Snapshot) ParseRows() error {
	cells := make([]Kind, 0, s.Width*s.Height)
	for y, row := range s.Rows {
		if len(row) != s.Width {
			return errors.Errorf("row %d has %d cells, want %d", y, len(row), s.Width)
		}
		for _, c := range row {
			k, err := ParseKind(string(c))
			if err != nil {
				return errors.WithMessagef(err, "row %d", y)
			}
			cells = append(cells, k)
		}
	}
	s.Cells = cells
	return nil
}
