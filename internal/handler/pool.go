package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/pool"
	"chat-game-bot/internal/model"
)

const poolHelp = `🎱 8-Ball Pool (2 players)
/pool start - open a table
/pool join, /pool leave
/pool begin - host racks the balls
/pool move <direction> [power] - shoot at 0-360 degrees (0 is right, 90 is down) with power 10-100 (default %.0f)
/pool table - show the table
/pool end - stop the game

The first ball you pot decides your set. Pot all of yours, then the 8. Potting the 8 early loses.`

// PoolHandler handles /pool.
type PoolHandler struct {
	lifecycle[*pool.Game]
	render       Renderer
	defaultPower float64
}

// NewPoolHandler creates a new PoolHandler.
func NewPoolHandler(reg *game.Registry[*pool.Game], out Messenger, render Renderer,
	recorder Recorder, isAdmin func(int64) bool, defaultPower float64) *PoolHandler {
	if defaultPower == 0 {
		defaultPower = pool.DefaultPower
	}
	return &PoolHandler{
		lifecycle: lifecycle[*pool.Game]{
			base: &base{out: out, recorder: recorder, isAdmin: isAdmin},
			kind: game.KindPool,
			reg:  reg,
		},
		render:       render,
		defaultPower: defaultPower,
	}
}

// Handle dispatches a /pool command.
func (h *PoolHandler) Handle(ctx context.Context, req *Request) {
	switch req.Sub() {
	case "", "help":
		h.say(ctx, req.ChatID, poolHelp, h.defaultPower)
	case "start":
		h.start(ctx, req, func() (*pool.Game, error) {
			return pool.New(req.ChatID, req.Sender.ID, req.Sender.Name), nil
		}, "One more player can /pool join, then the host starts with /pool begin.")
	case "join":
		h.join(ctx, req)
	case "leave":
		h.leave(ctx, req)
	case "end", "stop":
		h.end(ctx, req)
	case "begin":
		h.begin(ctx, req)
	case "status", "table":
		h.table(ctx, req)
	case "move", "shoot":
		h.shoot(ctx, req)
	default:
		h.fail(ctx, req, game.Reject(game.ErrInvalidArgument, "Unknown pool command. Try /pool help."))
	}
}

func (h *PoolHandler) begin(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *pool.Game) error {
		if err := g.Begin(ctx, req.Sender.ID); err != nil {
			return err
		}
		first, _ := g.Current()
		opp := g.Opponent(first)
		text := fmt.Sprintf("🎱 %s vs %s. %s breaks: /pool move <direction> [power]", first.Name, opp.Name, first.Name)
		h.picture(ctx, req.ChatID, text, func() ([]byte, error) { return h.render.Pool(g.Snapshot()) })
		return nil
	}))
}

func (h *PoolHandler) table(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *pool.Game) error {
		if g.InLobby() {
			h.say(ctx, req.ChatID, "⏳ Pool table (%d/%d), host %s.", g.Len(), pool.MaxPlayers, g.HostName())
			return nil
		}
		cur, _ := g.Current()
		text := fmt.Sprintf("🎱 Shot %d, %s to play.\n%s", g.Shots()+1, cur.Name, h.sets(g))
		h.picture(ctx, req.ChatID, text, func() ([]byte, error) { return h.render.Pool(g.Snapshot()) })
		return nil
	}))
}

func (h *PoolHandler) sets(g *pool.Game) string {
	var lines []string
	for _, p := range g.Players() {
		if p.Set == pool.TypeNone {
			lines = append(lines, fmt.Sprintf("%s: open table", p.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s, %d left", p.Name, p.Set, g.Table().Remaining(p.Set)))
	}
	return strings.Join(lines, "\n")
}

// shotArgs parses "<direction> [power]", falling back to defaultPower.
func shotArgs(args []string, defaultPower float64) (deg, power float64, err error) {
	if len(args) == 0 {
		return 0, 0, game.Reject(game.ErrInvalidArgument, "Use /pool move <direction 0-360> [power 10-100].")
	}
	deg, err = strconv.ParseFloat(strings.TrimSuffix(args[0], "°"), 64)
	if err != nil {
		return 0, 0, game.Reject(game.ErrInvalidDirection, "Direction must be a number between 0 and 360, not %q.", args[0])
	}
	power = defaultPower
	if len(args) > 1 {
		if power, err = strconv.ParseFloat(args[1], 64); err != nil {
			return 0, 0, game.Reject(game.ErrInvalidArgument, "Power must be a number between %.0f and %.0f.",
				pool.MinPower, pool.MaxPower)
		}
	}
	return deg, power, nil
}

func (h *PoolHandler) shoot(ctx context.Context, req *Request) {
	deg, power, err := shotArgs(req.Rest(), h.defaultPower)
	if err != nil {
		h.fail(ctx, req, err)
		return
	}

	h.fail(ctx, req, h.with(req.ChatID, func(g *pool.Game) error {
		rep, err := g.Shoot(ctx, req.Sender.ID, deg, power)
		if err != nil {
			return err
		}
		text := h.describe(g, rep)
		h.picture(ctx, req.ChatID, text, func() ([]byte, error) { return h.render.Pool(g.Snapshot()) })
		if rep.Winner != nil {
			h.record(ctx, g, model.ReasonEightBall, h.results(g, rep.Winner))
			h.finish(g)
		}
		return nil
	}))
}

func (h *PoolHandler) describe(g *pool.Game, rep *pool.ShotReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s shot at %.0f° with power %.0f.", rep.Shooter.Name, rep.Degrees, rep.Power)

	res := rep.Result
	if len(res.Pocketed) > 0 {
		ids := make([]string, len(res.Pocketed))
		for i, id := range res.Pocketed {
			ids[i] = strconv.Itoa(id)
		}
		fmt.Fprintf(&b, "\nPotted: %s", strings.Join(ids, ", "))
	} else if res.FirstHit == pool.TypeNone {
		b.WriteString("\nMissed everything.")
	}
	if rep.Assigned {
		opp := g.Opponent(rep.Shooter)
		fmt.Fprintf(&b, "\n%s takes %s, %s takes %s.", rep.Shooter.Name, rep.Shooter.Set, opp.Name, opp.Set)
	}
	if rep.Fouled() {
		fmt.Fprintf(&b, "\n⚠️ Foul: %s.", rep.Foul)
	}

	if rep.Winner != nil {
		if rep.Winner.ID == rep.Shooter.ID {
			fmt.Fprintf(&b, "\n🏆 %s sinks the 8 and wins!", rep.Winner.Name)
		} else {
			fmt.Fprintf(&b, "\n🎱 The 8 went down too early. 🏆 %s wins!", rep.Winner.Name)
		}
		return b.String()
	}
	if rep.KeepTurn {
		fmt.Fprintf(&b, "\n%s shoots again.", rep.Next.Name)
	} else {
		fmt.Fprintf(&b, "\nNext: %s", rep.Next.Name)
	}
	return b.String()
}

func (h *PoolHandler) results(g *pool.Game, winner *pool.Player) []*model.MatchPlayer {
	var out []*model.MatchPlayer
	for _, p := range g.Players() {
		score := 0
		if p.Set != pool.TypeNone {
			score = 7 - g.Table().Remaining(p.Set)
		}
		out = append(out, &model.MatchPlayer{
			PlayerID: p.ID,
			Name:     p.Name,
			Won:      p.ID == winner.ID,
			Score:    score,
		})
	}
	return out
}
