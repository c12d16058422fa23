package pool

import (
	"math"

	"chat-game-bot/internal/game/geom"
)

// ShotResult is what the simulator observed during one shot. It makes no
// rule decisions.
type ShotResult struct {
	// Pocketed lists ball numbers in the order they dropped.
	Pocketed []int
	// FirstHit is the type of the first ball the cue touched, TypeNone if none.
	FirstHit   BallType
	FirstHitID int
	Scratch    bool
	Eight      bool
	Steps      int
}

// Impulse maps a 10-100 power setting to the cue ball's launch speed.
func Impulse(power float64) float64 {
	return geom.Clamp(power, MinPower, MaxPower) / 100 * MaxImpulse
}

// Simulate strikes the cue ball toward degrees with the given power and runs
// the table until it comes to rest or MaxSteps elapse.
func Simulate(t *Table, degrees, power float64) ShotResult {
	res := ShotResult{FirstHitID: -1}
	t.Balls[CueBall].Vel = geom.FromDegrees(degrees).Scale(Impulse(power))

	for step := 0; step < MaxSteps; step++ {
		res.Steps = step + 1
		t.integrate()
		t.collide(&res)
		t.applyFriction()
		t.capture(&res)
		if !t.Moving() {
			break
		}
	}

	for i := range t.Balls {
		t.Balls[i].Vel = geom.Vec{}
	}
	t.separate()
	return res
}

// integrate advances positions and bounces balls off the cushions.
func (t *Table) integrate() {
	for i := range t.Balls {
		b := &t.Balls[i]
		if b.Pocketed {
			continue
		}
		b.Pos = b.Pos.Add(b.Vel.Scale(TimeStep))

		if b.Pos.X < BallRadius {
			b.Pos.X = BallRadius
			b.Vel.X = math.Abs(b.Vel.X) * WallRestitution
		} else if b.Pos.X > TableWidth-BallRadius {
			b.Pos.X = TableWidth - BallRadius
			b.Vel.X = -math.Abs(b.Vel.X) * WallRestitution
		}
		if b.Pos.Y < BallRadius {
			b.Pos.Y = BallRadius
			b.Vel.Y = math.Abs(b.Vel.Y) * WallRestitution
		} else if b.Pos.Y > TableHeight-BallRadius {
			b.Pos.Y = TableHeight - BallRadius
			b.Vel.Y = -math.Abs(b.Vel.Y) * WallRestitution
		}
	}
}

func (t *Table) collide(res *ShotResult) {
	for i := 0; i < NumBalls; i++ {
		a := &t.Balls[i]
		if a.Pocketed {
			continue
		}
		for j := i + 1; j < NumBalls; j++ {
			b := &t.Balls[j]
			if b.Pocketed {
				continue
			}
			if !resolveContact(a, b) {
				continue
			}
			if res.FirstHitID < 0 {
				switch {
				case a.ID == CueBall:
					res.FirstHitID, res.FirstHit = b.ID, b.Type
				case b.ID == CueBall:
					res.FirstHitID, res.FirstHit = a.ID, a.Type
				}
			}
		}
	}
}

// contactNormal returns the unit vector from a to b and their distance.
func contactNormal(a, b *Ball) (geom.Vec, float64) {
	d := b.Pos.Sub(a.Pos)
	dist := d.Len()
	if dist == 0 {
		return geom.V(1, 0), 0
	}
	return d.Normalize(), dist
}

// resolveContact exchanges momentum between two equal-mass balls along the
// contact normal and pushes them apart. It reports whether they touched.
func resolveContact(a, b *Ball) bool {
	n, dist := contactNormal(a, b)
	if dist >= BallRadius*2 {
		return false
	}

	// Only approaching pairs exchange momentum; separating ones just de-overlap.
	if closing := a.Vel.Sub(b.Vel).Dot(n); closing > 0 {
		j := (1 + BallRestitution) * closing / 2
		a.Vel = a.Vel.Sub(n.Scale(j))
		b.Vel = b.Vel.Add(n.Scale(j))
	}

	sep := (BallRadius*2-dist)/2 + 0.1
	a.Pos = a.Pos.Sub(n.Scale(sep))
	b.Pos = b.Pos.Add(n.Scale(sep))
	return true
}

func (t *Table) applyFriction() {
	for i := range t.Balls {
		if !t.Balls[i].Pocketed {
			t.Balls[i].Vel = t.Balls[i].Vel.Scale(Friction)
		}
	}
}

func (t *Table) capture(res *ShotResult) {
	for i := range t.Balls {
		b := &t.Balls[i]
		if b.Pocketed {
			continue
		}
		for _, p := range Pockets {
			if b.Pos.Dist(p) > PocketCapture {
				continue
			}
			b.Pocketed = true
			b.Vel = geom.Vec{}
			res.Pocketed = append(res.Pocketed, b.ID)
			switch b.Type {
			case TypeCue:
				res.Scratch = true
			case TypeEight:
				res.Eight = true
			}
			break
		}
	}
}

// separate pushes apart any balls still overlapping once the table is at rest.
func (t *Table) separate() {
	for pass := 0; pass < 8; pass++ {
		moved := false
		for i := 0; i < NumBalls; i++ {
			a := &t.Balls[i]
			if a.Pocketed {
				continue
			}
			for j := i + 1; j < NumBalls; j++ {
				b := &t.Balls[j]
				if b.Pocketed {
					continue
				}
				if resolveContact(a, b) {
					moved = true
				}
			}
		}
		t.clampAll()
		if !moved {
			return
		}
	}
}

func (t *Table) clampAll() {
	for i := range t.Balls {
		b := &t.Balls[i]
		b.Pos.X = geom.Clamp(b.Pos.X, BallRadius, TableWidth-BallRadius)
		b.Pos.Y = geom.Clamp(b.Pos.Y, BallRadius, TableHeight-BallRadius)
	}
}
