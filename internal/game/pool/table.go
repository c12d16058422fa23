package pool

import (
	"chat-game-bot/internal/game/geom"
)

// Table geometry and simulation constants, in logical table units.
const (
	TableWidth   = 900.0
	TableHeight  = 450.0
	BallRadius   = 12.0
	PocketRadius = 26.0
	// PocketCapture is how close a ball center must come to a pocket center.
	PocketCapture = PocketRadius - 4

	TimeStep        = 0.016
	MaxSteps        = 850
	Friction        = 0.992
	WallRestitution = 0.98
	BallRestitution = 0.98
	StopSpeed2      = 2.5
	MaxImpulse      = 1100.0

	MinPower     = 10.0
	MaxPower     = 100.0
	DefaultPower = 65.0

	NumBalls  = 16
	CueBall   = 0
	EightBall = 8

	respotTries = 6
)

// BallType classifies a ball by number.
type BallType int

const (
	TypeNone BallType = iota
	TypeCue
	TypeSolid
	TypeEight
	TypeStripe
)

func (t BallType) String() string {
	switch t {
	case TypeCue:
		return "cue"
	case TypeSolid:
		return "solids"
	case TypeEight:
		return "eight"
	case TypeStripe:
		return "stripes"
	default:
		return "none"
	}
}

// Opposite returns the other object-ball set.
func (t BallType) Opposite() BallType {
	switch t {
	case TypeSolid:
		return TypeStripe
	case TypeStripe:
		return TypeSolid
	default:
		return TypeNone
	}
}

// TypeOf maps a ball number to its type.
func TypeOf(id int) BallType {
	switch {
	case id == CueBall:
		return TypeCue
	case id == EightBall:
		return TypeEight
	case id >= 1 && id <= 7:
		return TypeSolid
	case id >= 9 && id <= 15:
		return TypeStripe
	default:
		return TypeNone
	}
}

// rackOrder fills the triangle row by row from the apex.
var rackOrder = [15]int{1, 10, 2, 13, 3, 12, 8, 11, 4, 15, 5, 14, 6, 9, 7}

// Pockets lists the six pocket centers: four corners and the two long-rail middles.
var Pockets = [6]geom.Vec{
	{X: BallRadius + 4, Y: BallRadius + 4},
	{X: TableWidth / 2, Y: BallRadius + 2},
	{X: TableWidth - BallRadius - 4, Y: BallRadius + 4},
	{X: BallRadius + 4, Y: TableHeight - BallRadius - 4},
	{X: TableWidth / 2, Y: TableHeight - BallRadius - 2},
	{X: TableWidth - BallRadius - 4, Y: TableHeight - BallRadius - 4},
}

// Ball is one ball on the table.
type Ball struct {
	ID       int
	Type     BallType
	Pos      geom.Vec
	Vel      geom.Vec
	Pocketed bool
}

// Table holds all sixteen balls, indexed by number.
type Table struct {
	Balls [NumBalls]Ball
}

// CueSpot is where the cue ball starts and is re-spotted.
func CueSpot() geom.Vec {
	return geom.V(TableWidth*0.24, TableHeight/2)
}

// NewTable returns a freshly racked table.
func NewTable() *Table {
	t := &Table{}
	for i := range t.Balls {
		t.Balls[i] = Ball{ID: i, Type: TypeOf(i)}
	}
	t.Balls[CueBall].Pos = CueSpot()

	spacing := BallRadius*2 + 1
	apex := geom.V(TableWidth*0.72, TableHeight/2)
	k := 0
	for row := 0; row < 5; row++ {
		for col := 0; col <= row; col++ {
			id := rackOrder[k]
			k++
			t.Balls[id].Pos = geom.V(
				apex.X+float64(row)*spacing,
				apex.Y+(float64(col)-float64(row)/2)*spacing,
			)
		}
	}
	return t
}

// Remaining counts unpocketed balls of type bt.
func (t *Table) Remaining(bt BallType) int {
	n := 0
	for _, b := range t.Balls {
		if b.Type == bt && !b.Pocketed {
			n++
		}
	}
	return n
}

// Moving reports whether any unpocketed ball is above the stop threshold.
func (t *Table) Moving() bool {
	for _, b := range t.Balls {
		if !b.Pocketed && b.Vel.Len2() > StopSpeed2 {
			return true
		}
	}
	return false
}

// RespotCue puts the cue ball back on its spot, nudging it toward the middle
// of the table while it would overlap another ball.
func (t *Table) RespotCue() {
	pos := CueSpot()
	for try := 0; try < respotTries; try++ {
		if !t.overlapsAny(pos, CueBall) {
			break
		}
		pos.X += BallRadius * 2.4
	}
	pos.X = geom.Clamp(pos.X, BallRadius+2, TableWidth/2-BallRadius-4)
	pos.Y = geom.Clamp(pos.Y, BallRadius+2, TableHeight-BallRadius-2)

	cue := &t.Balls[CueBall]
	cue.Pos = pos
	cue.Vel = geom.Vec{}
	cue.Pocketed = false
}

func (t *Table) overlapsAny(pos geom.Vec, skip int) bool {
	for _, b := range t.Balls {
		if b.ID == skip || b.Pocketed {
			continue
		}
		if b.Pos.Dist(pos) < BallRadius*2.2 {
			return true
		}
	}
	return false
}
