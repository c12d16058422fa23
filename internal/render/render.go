// Package render draws game state to PNG images.
package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/pool"
)

const (
	cellSize = 64
	margin   = 16
	border   = 40
)

// ballColors holds the color of balls 1-8; stripes reuse 1-7.
var ballColors = [9]string{
	"#ffffff", "#f1c40f", "#2e86de", "#e74c3c", "#8e44ad",
	"#e67e22", "#27ae60", "#922b21", "#111111",
}

// Renderer draws boards and tables.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer { return &Renderer{} }

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ChainReaction draws the board with cell numbers and orbs.
func (r *Renderer) ChainReaction(s *chainreaction.Snapshot) ([]byte, error) {
	w := s.Width*cellSize + 2*margin
	h := s.Height*cellSize + 2*margin
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#1e1e24")
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			cx := float64(margin + x*cellSize)
			cy := float64(margin + y*cellSize)

			dc.SetHexColor("#3a3a46")
			dc.SetLineWidth(2)
			dc.DrawRectangle(cx, cy, cellSize, cellSize)
			dc.Stroke()

			dc.SetHexColor("#6c6c7a")
			dc.DrawString(strconv.Itoa(y*s.Width+x+1), cx+4, cy+14)

			count := s.Counts[y][x]
			if count == 0 {
				continue
			}
			dc.SetHexColor(s.Colors[y][x])
			for _, off := range orbOffsets(count) {
				dc.DrawCircle(cx+cellSize/2+off[0], cy+cellSize/2+off[1], 9)
				dc.Fill()
			}
			if count >= s.Capacity[y][x] {
				// Primed.
				dc.SetLineWidth(3)
				dc.DrawCircle(cx+cellSize/2, cy+cellSize/2, cellSize/2-8)
				dc.Stroke()
			}
		}
	}
	return encode(dc)
}

func orbOffsets(count int) [][2]float64 {
	switch count {
	case 1:
		return [][2]float64{{0, 0}}
	case 2:
		return [][2]float64{{-8, 0}, {8, 0}}
	default:
		return [][2]float64{{-8, 6}, {8, 6}, {0, -8}}
	}
}

// Pool draws the table, pockets and every ball still in play.
func (r *Renderer) Pool(s *pool.Snapshot) ([]byte, error) {
	w := int(s.Width) + 2*border
	h := int(s.Height) + 2*border
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#5d3a1a")
	dc.Clear()

	dc.SetHexColor("#1b7f3b")
	dc.DrawRectangle(border, border, s.Width, s.Height)
	dc.Fill()

	dc.SetHexColor("#0b0b0b")
	for _, p := range s.Pockets {
		dc.DrawCircle(border+p.X, border+p.Y, pool.PocketRadius)
		dc.Fill()
	}

	dc.SetFontFace(basicfont.Face7x13)
	for _, b := range s.Balls {
		if b.Pocketed {
			continue
		}
		x, y := border+b.X, border+b.Y
		drawBall(dc, b.ID, x, y)
	}
	return encode(dc)
}

func drawBall(dc *gg.Context, id int, x, y float64) {
	color := ballColors[0]
	if id > 0 {
		color = ballColors[(id-1)%8+1]
	}

	if pool.TypeOf(id) == pool.TypeStripe {
		dc.SetHexColor("#ffffff")
		dc.DrawCircle(x, y, pool.BallRadius)
		dc.Fill()
		dc.SetHexColor(color)
		dc.DrawRectangle(x-pool.BallRadius+2, y-pool.BallRadius/2, 2*pool.BallRadius-4, pool.BallRadius)
		dc.Fill()
	} else {
		dc.SetHexColor(color)
		dc.DrawCircle(x, y, pool.BallRadius)
		dc.Fill()
	}

	if id == pool.CueBall {
		return
	}
	dc.SetHexColor("#ffffff")
	dc.DrawCircle(x, y, pool.BallRadius/2)
	dc.Fill()
	dc.SetHexColor("#000000")
	dc.DrawStringAnchored(strconv.Itoa(id), x, y, 0.5, 0.35)
}
