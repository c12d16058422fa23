package pool

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/geom"
)

const (
	alice int64 = 11
	bob   int64 = 22
)

const up = 270.0

func begun(t *testing.T) *Game {
	t.Helper()
	g := New(-5, alice, "alice")
	require.NoError(t, g.Join(bob, "bob"))
	require.NoError(t, g.Begin(context.Background(), alice))
	return g
}

// clearTable pockets every object ball except keep.
func clearTable(tb *Table, keep ...int) {
	for i := range tb.Balls {
		if i == CueBall || slices.Contains(keep, i) {
			continue
		}
		tb.Balls[i].Pocketed = true
		tb.Balls[i].Vel = geom.Vec{}
	}
}

func place(tb *Table, id int, x, y float64) {
	tb.Balls[id].Pos = geom.V(x, y)
	tb.Balls[id].Vel = geom.Vec{}
	tb.Balls[id].Pocketed = false
}

// lineUp puts ball id straight below the top middle pocket with the cue
// behind it, so a shot at 270 degrees sinks it.
func lineUp(tb *Table, id int) {
	place(tb, id, TableWidth/2, 60)
	place(tb, CueBall, TableWidth/2, 200)
}

func TestRack(t *testing.T) {
	tb := NewTable()
	assert.Equal(t, CueSpot(), tb.Balls[CueBall].Pos)
	assert.Equal(t, geom.V(TableWidth*0.72, TableHeight/2), tb.Balls[1].Pos)
	assert.Equal(t, 7, tb.Remaining(TypeSolid))
	assert.Equal(t, 7, tb.Remaining(TypeStripe))
	assert.Equal(t, 1, tb.Remaining(TypeEight))

	for i := 0; i < NumBalls; i++ {
		for j := i + 1; j < NumBalls; j++ {
			assert.GreaterOrEqual(t, tb.Balls[i].Pos.Dist(tb.Balls[j].Pos), BallRadius*2,
				"balls %d and %d overlap", i, j)
		}
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeCue, TypeOf(0))
	assert.Equal(t, TypeSolid, TypeOf(1))
	assert.Equal(t, TypeSolid, TypeOf(7))
	assert.Equal(t, TypeEight, TypeOf(8))
	assert.Equal(t, TypeStripe, TypeOf(9))
	assert.Equal(t, TypeStripe, TypeOf(15))
	assert.Equal(t, TypeNone, TypeOf(16))
	assert.Equal(t, TypeStripe, TypeSolid.Opposite())
}

func TestImpulse(t *testing.T) {
	assert.Equal(t, 110.0, Impulse(0))
	assert.Equal(t, 715.0, Impulse(DefaultPower))
	assert.Equal(t, MaxImpulse, Impulse(250))
}

func TestBreakShot(t *testing.T) {
	g := begun(t)

	rep, err := g.Shoot(context.Background(), alice, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, TypeSolid, rep.Result.FirstHit)
	assert.Equal(t, 1, rep.Result.FirstHitID)
	if !rep.Result.Scratch {
		assert.False(t, rep.Fouled(), "break cannot be a wrong-ball foul")
	}
	assert.LessOrEqual(t, rep.Result.Steps, MaxSteps)
}

func TestSetAssignmentAndRetention(t *testing.T) {
	ctx := context.Background()
	g := begun(t)
	tb := g.Table()
	clearTable(tb, 1, 9)
	place(tb, 9, 700, 350)
	lineUp(tb, 1)

	rep, err := g.Shoot(ctx, alice, up, DefaultPower)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rep.Result.Pocketed)
	assert.True(t, rep.Assigned)
	assert.False(t, rep.Fouled())
	assert.True(t, rep.KeepTurn)
	assert.Equal(t, 0, g.TurnIndex())

	a, b := g.At(0), g.At(1)
	assert.Equal(t, TypeSolid, a.Set)
	assert.Equal(t, TypeStripe, b.Set)

	// A soft miss hands the table over.
	rep, err = g.Shoot(ctx, alice, 90, MinPower)
	require.NoError(t, err)
	assert.Empty(t, rep.Result.Pocketed)
	assert.False(t, rep.KeepTurn)
	assert.Equal(t, bob, rep.Next.ID)

	lineUp(tb, 9)
	rep, err = g.Shoot(ctx, bob, up, DefaultPower)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, rep.Result.Pocketed)
	assert.False(t, rep.Assigned)
	assert.True(t, rep.KeepTurn)
	assert.Equal(t, TypeSolid, a.Set)
	assert.Equal(t, TypeStripe, b.Set)
	assert.Equal(t, 1, g.TurnIndex())
}

func TestWrongFirstContactPassesTurn(t *testing.T) {
	g := begun(t)
	g.At(0).Set = TypeSolid
	g.At(1).Set = TypeStripe

	tb := g.Table()
	clearTable(tb, 1, 9)
	place(tb, 1, TableWidth/2, 60)
	place(tb, 9, TableWidth/2, 100)
	place(tb, CueBall, TableWidth/2, 200)

	rep, err := g.Shoot(context.Background(), alice, up, DefaultPower)
	require.NoError(t, err)
	assert.Equal(t, TypeStripe, rep.Result.FirstHit)
	assert.Contains(t, rep.Result.Pocketed, 1)
	assert.Equal(t, FoulWrongBall, rep.Foul)
	assert.False(t, rep.KeepTurn)
	assert.Equal(t, 1, g.TurnIndex())
}

func TestScratch(t *testing.T) {
	g := begun(t)
	tb := g.Table()
	clearTable(tb, 2)
	place(tb, 2, 100, 350)
	place(tb, CueBall, TableWidth/2, 80)

	rep, err := g.Shoot(context.Background(), alice, up, DefaultPower)
	require.NoError(t, err)
	assert.True(t, rep.Result.Scratch)
	assert.Equal(t, FoulScratch, rep.Foul)
	assert.Equal(t, bob, rep.Next.ID)

	cue := tb.Balls[CueBall]
	assert.False(t, cue.Pocketed)
	assert.Equal(t, CueSpot(), cue.Pos)
}

func TestRespotAvoidsOverlap(t *testing.T) {
	tb := NewTable()
	clearTable(tb, 3)
	place(tb, 3, CueSpot().X, CueSpot().Y)
	tb.Balls[CueBall].Pocketed = true

	tb.RespotCue()
	cue := tb.Balls[CueBall]
	assert.False(t, cue.Pocketed)
	assert.GreaterOrEqual(t, cue.Pos.Dist(tb.Balls[3].Pos), BallRadius*2.2)
	assert.LessOrEqual(t, cue.Pos.X, TableWidth/2-BallRadius-4)
}

func TestEightBallRules(t *testing.T) {
	tests := []struct {
		name      string
		shooter   BallType
		keepSolid bool
		winner    int64
	}{
		{name: "no set loses", shooter: TypeNone, winner: bob},
		{name: "cleared set wins", shooter: TypeSolid, winner: alice},
		{name: "early eight loses", shooter: TypeSolid, keepSolid: true, winner: bob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := begun(t)
			g.At(0).Set = tt.shooter
			g.At(1).Set = tt.shooter.Opposite()

			tb := g.Table()
			if tt.keepSolid {
				clearTable(tb, EightBall, 2)
				place(tb, 2, 100, 350)
			} else {
				clearTable(tb, EightBall)
			}
			lineUp(tb, EightBall)

			rep, err := g.Shoot(context.Background(), alice, up, DefaultPower)
			require.NoError(t, err)
			assert.True(t, rep.Result.Eight)
			require.NotNil(t, rep.Winner)
			assert.Equal(t, tt.winner, rep.Winner.ID)
			assert.True(t, g.Ended())
		})
	}
}

func TestShootRejections(t *testing.T) {
	ctx := context.Background()

	lobby := New(-1, alice, "alice")
	_, err := lobby.Shoot(ctx, alice, 0, 50)
	assert.ErrorIs(t, err, game.ErrWrongPhase)
	require.NoError(t, lobby.Join(bob, "bob"))
	assert.ErrorIs(t, lobby.Join(33, "carl"), game.ErrFull)

	g := begun(t)
	_, err = g.Shoot(ctx, bob, 0, 50)
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	_, err = g.Shoot(ctx, alice, math.NaN(), 50)
	assert.ErrorIs(t, err, game.ErrInvalidDirection)
	_, err = g.Shoot(ctx, alice, math.Inf(1), 50)
	assert.ErrorIs(t, err, game.ErrInvalidDirection)
}

func TestShotNormalizesInputs(t *testing.T) {
	g := begun(t)
	clearTable(g.Table())
	rep, err := g.Shoot(context.Background(), alice, -90, 500)
	require.NoError(t, err)
	assert.Equal(t, 270.0, rep.Degrees)
	assert.Equal(t, MaxPower, rep.Power)
}

func TestContactNormal(t *testing.T) {
	a := &Ball{Pos: geom.V(10, 10)}
	b := &Ball{Pos: geom.V(13, 14)}
	n, dist := contactNormal(a, b)
	assert.Equal(t, 5.0, dist)
	assert.InDelta(t, 0.6, n.X, 1e-9)
	assert.InDelta(t, 0.8, n.Y, 1e-9)

	n, dist = contactNormal(a, &Ball{Pos: a.Pos})
	assert.Zero(t, dist)
	assert.Equal(t, geom.V(1, 0), n)
}

func TestRestingTableHasNoOverlap(t *testing.T) {
	g := begun(t)
	_, err := g.Shoot(context.Background(), alice, 0, 100)
	require.NoError(t, err)

	tb := g.Table()
	for i := 0; i < NumBalls; i++ {
		for j := i + 1; j < NumBalls; j++ {
			a, b := tb.Balls[i], tb.Balls[j]
			if a.Pocketed || b.Pocketed {
				continue
			}
			assert.GreaterOrEqual(t, a.Pos.Dist(b.Pos), BallRadius*2-1e-6, "balls %d and %d overlap", i, j)
		}
	}
}

// TestCollisionConservesMomentumProperty: *for any* touching pair of equal
// mass balls, the contact preserves total momentum and never adds energy.
func TestCollisionConservesMomentumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		angle := rapid.Float64Range(0, 360).Draw(t, "angle")
		dist := rapid.Float64Range(1, BallRadius*2-0.01).Draw(t, "dist")
		va := geom.V(rapid.Float64Range(-1000, 1000).Draw(t, "vax"), rapid.Float64Range(-1000, 1000).Draw(t, "vay"))
		vb := geom.V(rapid.Float64Range(-1000, 1000).Draw(t, "vbx"), rapid.Float64Range(-1000, 1000).Draw(t, "vby"))

		a := &Ball{ID: 1, Pos: geom.V(400, 200), Vel: va}
		b := &Ball{ID: 2, Pos: a.Pos.Add(geom.FromDegrees(angle).Scale(dist)), Vel: vb}

		before := va.Add(vb)
		energyBefore := va.Len2() + vb.Len2()

		if !resolveContact(a, b) {
			t.Fatal("expected contact")
		}

		after := a.Vel.Add(b.Vel)
		if math.Abs(after.X-before.X) > 1e-6 || math.Abs(after.Y-before.Y) > 1e-6 {
			t.Fatalf("momentum changed: %v -> %v", before, after)
		}
		if energyAfter := a.Vel.Len2() + b.Vel.Len2(); energyAfter > energyBefore+1e-6 {
			t.Fatalf("energy grew: %v -> %v", energyBefore, energyAfter)
		}
		if a.Pos.Dist(b.Pos) < BallRadius*2 {
			t.Fatalf("still overlapping at %v", a.Pos.Dist(b.Pos))
		}
	})
}
