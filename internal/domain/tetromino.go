package domain

import (
	"github.com/pkg/errors"
)

var ErrInvalidKind = errors.New("invalid tetromino kind")

type Kind byte

const (
	Empty = Kind(iota)
	I
	J
	L
	O
	S
	T
	Z
	kindCount
)

// RealKinds is the number of spawnable kinds (Empty excluded).
const RealKinds = int(kindCount) - 1

var kindNames = [kindCount]string{" ", "I", "J", "L", "O", "S", "T", "Z"}

func (k Kind) Valid() bool {
	return k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return "?"
	}
	return kindNames[k]
}

func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return Empty, errors.WithMessagef(ErrInvalidKind, "name '%s'", name)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Point is a cell offset or a grid coordinate, depending on context.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type shape [4]Point

// Base silhouettes. dy grows downward on screen, so a cell at
// anchor (x, y) lands on grid row y-dy.
var baseShapes = [kindCount]shape{
	Empty: {},
	I:     {{0, -1}, {0, 0}, {0, 1}, {0, 2}},
	J:     {{1, -1}, {0, -1}, {0, 0}, {0, 1}},
	L:     {{-1, -1}, {0, -1}, {0, 0}, {0, 1}},
	O:     {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	S:     {{0, -1}, {0, 0}, {1, 0}, {1, 1}},
	T:     {{-1, 0}, {0, 0}, {1, 0}, {0, 1}},
	Z:     {{0, -1}, {0, 0}, {-1, 0}, {-1, 1}},
}

var rotationCount = [kindCount]int{
	Empty: 1,
	I:     2,
	J:     4,
	L:     4,
	O:     1,
	S:     2,
	T:     4,
	Z:     2,
}

// rotations[k][r] is the base shape of k turned clockwise r times.
var rotations = buildRotations()

func buildRotations() [kindCount][]shape {
	var table [kindCount][]shape
	for k := Empty; k < kindCount; k++ {
		states := make([]shape, rotationCount[k])
		states[0] = baseShapes[k]
		for r := 1; r < len(states); r++ {
			for i, p := range states[r-1] {
				states[r][i] = Point{X: -p.Y, Y: p.X}
			}
		}
		table[k] = states
	}
	return table
}

type Randomizer interface {
	IntN(n int) int
}

// Tetromino is an immutable piece value: a kind and one of its rotation states.
type Tetromino struct {
	kind     Kind
	rotation int
}

func NewTetromino(kind Kind) Tetromino {
	mustBeValid(kind)
	return Tetromino{kind: kind}
}

// SpawnRandom picks one of the seven real kinds uniformly, in its first rotation.
func SpawnRandom(r Randomizer) Tetromino {
	return NewTetromino(Kind(r.IntN(RealKinds) + 1))
}

func (t Tetromino) Kind() Kind {
	return t.kind
}

func (t Tetromino) Rotation() int {
	return t.rotation
}

func (t Tetromino) CoordinateOf(i int) Point {
	return t.offsets()[i]
}

func (t Tetromino) RotateRight() Tetromino {
	mustBeValid(t.kind)
	n := rotationCount[t.kind]
	return Tetromino{kind: t.kind, rotation: (t.rotation + 1) % n}
}

func (t Tetromino) RotateLeft() Tetromino {
	mustBeValid(t.kind)
	n := rotationCount[t.kind]
	return Tetromino{kind: t.kind, rotation: (t.rotation + n - 1) % n}
}

func (t Tetromino) MinX() int {
	return t.extreme(func(p Point) int { return p.X }, false)
}

func (t Tetromino) MaxX() int {
	return t.extreme(func(p Point) int { return p.X }, true)
}

func (t Tetromino) MinY() int {
	return t.extreme(func(p Point) int { return p.Y }, false)
}

func (t Tetromino) MaxY() int {
	return t.extreme(func(p Point) int { return p.Y }, true)
}

// Cells returns the absolute grid cells of the piece anchored at (x, y).
func (t Tetromino) Cells(x, y int) [4]Point {
	var cells [4]Point
	for i, p := range t.offsets() {
		cells[i] = Point{X: x + p.X, Y: y - p.Y}
	}
	return cells
}

func (t Tetromino) offsets() shape {
	mustBeValid(t.kind)
	return rotations[t.kind][t.rotation]
}

func (t Tetromino) extreme(axis func(Point) int, largest bool) int {
	offsets := t.offsets()
	v := axis(offsets[0])
	for _, p := range offsets[1:] {
		c := axis(p)
		if (largest && c > v) || (!largest && c < v) {
			v = c
		}
	}
	return v
}

func mustBeValid(kind Kind) {
	if !kind.Valid() {
		panic(errors.WithMessagef(ErrInvalidKind, "kind %d", kind))
	}
}
