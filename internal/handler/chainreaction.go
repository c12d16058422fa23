package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/model"
)

var colorNames = map[string]string{
	"#e74c3c": "red",
	"#3498db": "blue",
	"#f1c40f": "yellow",
	"#9b59b6": "purple",
	"#1abc9c": "teal",
	"#e67e22": "orange",
	"#2ecc71": "green",
	"#95a5a6": "grey",
}

func colorName(hex string) string {
	if n, ok := colorNames[hex]; ok {
		return n
	}
	return hex
}

const chainReactionHelp = `💥 Chain Reaction
/cr start - open a lobby
/cr join, /cr leave
/cr begin [width] [height] - host starts the game (2-10, default %dx%d)
/cr move <n> - drop an orb in cell n (numbered left to right, top to bottom)
/cr <x> <y> - drop an orb at column x, row y
/cr status - show the board
/cr end - stop the game

A cell explodes when it holds more orbs than its capacity (1 in corners, 2 elsewhere), taking over its neighbours. Lose all your cells and you are out.`

// ChainReactionHandler handles /cr.
type ChainReactionHandler struct {
	lifecycle[*chainreaction.Game]
	render        Renderer
	width, height int
}

// NewChainReactionHandler creates a new ChainReactionHandler.
func NewChainReactionHandler(reg *game.Registry[*chainreaction.Game], out Messenger, render Renderer,
	recorder Recorder, isAdmin func(int64) bool, width, height int) *ChainReactionHandler {
	if width == 0 || height == 0 {
		width, height = chainreaction.DefaultWidth, chainreaction.DefaultHeight
	}
	return &ChainReactionHandler{
		lifecycle: lifecycle[*chainreaction.Game]{
			base: &base{out: out, recorder: recorder, isAdmin: isAdmin},
			kind: game.KindChainReaction,
			reg:  reg,
		},
		render: render,
		width:  width,
		height: height,
	}
}

// Handle dispatches a /cr command.
func (h *ChainReactionHandler) Handle(ctx context.Context, req *Request) {
	switch req.Sub() {
	case "", "help":
		h.say(ctx, req.ChatID, chainReactionHelp, h.width, h.height)
	case "start":
		h.start(ctx, req, func() (*chainreaction.Game, error) {
			return chainreaction.New(req.ChatID, req.Sender.ID, req.Sender.Name), nil
		}, "Join with /cr join, then the host starts with /cr begin.")
	case "join":
		h.join(ctx, req)
	case "leave":
		h.leave(ctx, req)
	case "end", "stop":
		h.end(ctx, req)
	case "begin":
		h.begin(ctx, req)
	case "status":
		h.status(ctx, req)
	case "move":
		h.move(ctx, req, req.Rest())
	default:
		h.move(ctx, req, req.Args)
	}
}

func (h *ChainReactionHandler) begin(ctx context.Context, req *Request) {
	w, hgt := h.width, h.height
	if args := req.Rest(); len(args) > 0 {
		var err error
		if w, err = strconv.Atoi(args[0]); err != nil {
			h.fail(ctx, req, sizeError())
			return
		}
		hgt = w
		if len(args) > 1 {
			if hgt, err = strconv.Atoi(args[1]); err != nil {
				h.fail(ctx, req, sizeError())
				return
			}
		}
	}

	h.fail(ctx, req, h.with(req.ChatID, func(g *chainreaction.Game) error {
		if err := g.Begin(ctx, req.Sender.ID, w, hgt); err != nil {
			return err
		}
		first, _ := g.Current()
		text := fmt.Sprintf("💥 Chain Reaction on a %dx%d board!\n%s\n\n%s (%s) goes first: /cr move <n>",
			w, hgt, h.roster(g), first.Name, colorName(first.Color))
		h.picture(ctx, req.ChatID, text, func() ([]byte, error) { return h.render.ChainReaction(g.Snapshot()) })
		return nil
	}))
}

func sizeError() error {
	return game.Reject(game.ErrInvalidArgument, "Board size must be between %d and %d, e.g. /cr begin 6 8.",
		chainreaction.MinSide, chainreaction.MaxSide)
}

func (h *ChainReactionHandler) status(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *chainreaction.Game) error {
		if g.InLobby() {
			h.say(ctx, req.ChatID, "⏳ Chain Reaction lobby (%d/%d), host %s.\n%s",
				g.Len(), chainreaction.MaxPlayers, g.HostName(), h.roster(g))
			return nil
		}
		cur, _ := g.Current()
		text := fmt.Sprintf("💥 Move %d. %s (%s) to play.\n%s", g.Moves()+1, cur.Name, colorName(cur.Color), h.roster(g))
		h.picture(ctx, req.ChatID, text, func() ([]byte, error) { return h.render.ChainReaction(g.Snapshot()) })
		return nil
	}))
}

func (h *ChainReactionHandler) roster(g *chainreaction.Game) string {
	var b strings.Builder
	for i, p := range g.Players() {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, p.Name, colorName(p.Color))
		switch {
		case p.Eliminated:
			b.WriteString(" ☠️")
		case g.InPlay():
			fmt.Fprintf(&b, " %d cells", g.Board().CellsOwned(p.ID))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// move accepts either a single cell number or 1-based x and y.
func (h *ChainReactionHandler) move(ctx context.Context, req *Request, args []string) {
	nums := make([]int, 0, 2)
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			break
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 || len(nums) > 2 || len(nums) != len(args) {
		h.fail(ctx, req, game.Reject(game.ErrInvalidArgument, "Use /cr move <n> or /cr <x> <y>."))
		return
	}

	h.fail(ctx, req, h.with(req.ChatID, func(g *chainreaction.Game) error {
		var res *chainreaction.MoveResult
		var err error
		if len(nums) == 1 {
			res, err = g.PlaceCell(ctx, req.Sender.ID, nums[0])
		} else {
			res, err = g.Place(ctx, req.Sender.ID, nums[0]-1, nums[1]-1)
		}
		if err != nil {
			return err
		}

		text := h.describe(g, res)
		h.picture(ctx, req.ChatID, text, func() ([]byte, error) { return h.render.ChainReaction(g.Snapshot()) })
		if res.Winner != nil {
			h.record(ctx, g, model.ReasonCapture, h.results(g, res.Winner))
			h.finish(g)
		}
		return nil
	}))
}

func (h *ChainReactionHandler) describe(g *chainreaction.Game, res *chainreaction.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s played (%d, %d).", res.Player.Name, res.X+1, res.Y+1)
	if res.Explosions > 0 {
		fmt.Fprintf(&b, " 💥 x%d", res.Explosions)
	}
	for _, p := range res.Eliminated {
		fmt.Fprintf(&b, "\n☠️ %s is out!", p.Name)
	}
	if res.Winner != nil {
		fmt.Fprintf(&b, "\n🏆 %s (%s) wins after %d moves!", res.Winner.Name, colorName(res.Winner.Color), g.Moves())
		return b.String()
	}
	fmt.Fprintf(&b, "\nNext: %s (%s)", res.Next.Name, colorName(res.Next.Color))
	return b.String()
}

func (h *ChainReactionHandler) results(g *chainreaction.Game, winner *chainreaction.Player) []*model.MatchPlayer {
	var out []*model.MatchPlayer
	for _, p := range g.Players() {
		out = append(out, &model.MatchPlayer{
			PlayerID: p.ID,
			Name:     p.Name,
			Won:      p.ID == winner.ID,
			Score:    g.Board().CellsOwned(p.ID),
		})
	}
	return out
}
