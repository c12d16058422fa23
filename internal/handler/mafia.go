package handler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/mafia"
	"chat-game-bot/internal/model"
)

const mafiaHelp = `🔪 Mafia (%d+ players)
/mafia start - open a lobby
/mafia join, /mafia leave
/mafia begin - host deals the roles
/mafia vote <seat|@name|name> - vote during the day
/mafia next - host ends the current night or day
/mafia status - show who is alive
/mafia end - stop the game

At night, in a private chat with me:
/mafia kill <target> - murderer
/mafia save [target] - doctor (yourself by default)
/mafia check <target> - sheriff
/mafia role - show your role again`

var roleIntro = map[mafia.Role]string{
	mafia.RoleMurderer: "🔪 You are the Murderer. Each night pick a victim with /mafia kill <seat>. Don't get voted out.",
	mafia.RoleSheriff:  "🔍 You are the Sheriff. Each night investigate someone with /mafia check <seat>.",
	mafia.RoleDoctor:   "💉 You are the Doctor. Each night protect someone with /mafia save <seat>, or yourself with /mafia save.",
	mafia.RoleCitizen:  "🧑 You are a Citizen. Find the murderer and vote them out during the day.",
}

// MafiaHandler handles /mafia in groups and night actions in private chats.
type MafiaHandler struct {
	lifecycle[*mafia.Game]
	dir        *mafia.Directory
	minPlayers int
}

// NewMafiaHandler creates a new MafiaHandler.
func NewMafiaHandler(reg *game.Registry[*mafia.Game], dir *mafia.Directory, out Messenger,
	recorder Recorder, isAdmin func(int64) bool, minPlayers int) *MafiaHandler {
	return &MafiaHandler{
		lifecycle: lifecycle[*mafia.Game]{
			base: &base{out: out, recorder: recorder, isAdmin: isAdmin},
			kind: game.KindMafia,
			reg:  reg,
		},
		dir:        dir,
		minPlayers: max(minPlayers, mafia.MinPlayers),
	}
}

// Handle dispatches a /mafia command or button press.
func (h *MafiaHandler) Handle(ctx context.Context, req *Request) {
	if req.Private {
		h.handlePrivate(ctx, req)
		return
	}
	switch req.Sub() {
	case "", "help":
		h.say(ctx, req.ChatID, mafiaHelp, h.minPlayers)
	case "start":
		h.start(ctx, req, func() (*mafia.Game, error) {
			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			g, err := mafia.New(req.ChatID, req.Sender.ID, req.Sender.Name, h.dir, rng)
			if err != nil {
				return nil, err
			}
			g.RaiseMinPlayers(h.minPlayers)
			return g, nil
		}, fmt.Sprintf("Join with /mafia join. At least %d players are needed; open a private chat with me so I can send your role.", h.minPlayers))
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
	case "vote":
		h.vote(ctx, req)
	case "next":
		h.next(ctx, req)
	case "kill", "save", "check", "role":
		h.fail(ctx, req, game.Reject(game.ErrWrongPhase, "Send night actions to me in a private chat, not here."))
	default:
		h.fail(ctx, req, game.Reject(game.ErrInvalidArgument, "Unknown Mafia command. Try /mafia help."))
	}
}

func (h *MafiaHandler) handlePrivate(ctx context.Context, req *Request) {
	sub := req.Sub()
	if sub == "" || sub == "help" {
		h.say(ctx, req.ChatID, mafiaHelp, h.minPlayers)
		return
	}
	scope, ok := h.dir.Lookup(req.Sender.ID)
	if !ok {
		h.fail(ctx, req, game.Reject(game.ErrNotJoined, "You are not in a Mafia game. Join one in a group with /mafia join."))
		return
	}

	if sub == "role" {
		h.fail(ctx, req, h.with(scope, func(g *mafia.Game) error {
			p, ok := g.Player(req.Sender.ID)
			if !ok || g.InLobby() {
				return game.Reject(game.ErrWrongPhase, "Roles are dealt when the game begins.")
			}
			h.direct(ctx, req.Sender.ID, h.roleMessage(g, p))
			return nil
		}))
		return
	}

	action, ok := mafia.ParseAction(sub)
	if !ok {
		h.fail(ctx, req, game.Reject(game.ErrInvalidArgument, "Night actions are kill, save and check."))
		return
	}
	target := mafia.Target{Text: strings.Join(req.Rest(), " ")}
	if len(req.Mentions) > 0 {
		target.Mention = req.Mentions[0]
	}

	h.fail(ctx, req, h.with(scope, func(g *mafia.Game) error {
		rep, err := g.NightAction(ctx, req.Sender.ID, action, target)
		if err != nil {
			return err
		}
		switch rep.Action {
		case mafia.ActionKill:
			h.say(ctx, req.ChatID, "🔪 You chose %s.", rep.Target.Name)
		case mafia.ActionSave:
			h.say(ctx, req.ChatID, "💉 You are protecting %s tonight.", rep.Target.Name)
		case mafia.ActionCheck:
			verdict := "is not the murderer"
			if rep.IsMurderer {
				verdict = "IS the murderer"
			}
			h.say(ctx, req.ChatID, "🔍 %s %s.", rep.Target.Name, verdict)
		}
		log.Debug().
			Int64("chat_id", scope).
			Int64("user_id", req.Sender.ID).
			Str("action", string(rep.Action)).
			Msg("Night action recorded")
		if rep.Resolution != nil {
			h.announce(ctx, g, rep.Resolution)
		}
		return nil
	}))
}

func (h *MafiaHandler) begin(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *mafia.Game) error {
		players, err := g.Begin(ctx, req.Sender.ID)
		if err != nil {
			return err
		}

		var missed []string
		for _, p := range players {
			if !h.direct(ctx, p.ID, h.roleMessage(g, p)) {
				missed = append(missed, p.Name)
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "🌙 The game begins and night falls. Roles were sent privately.\n\n%s", h.seats(g))
		if len(missed) > 0 {
			fmt.Fprintf(&b, "\n\n⚠️ I couldn't message %s. Open a private chat with me and send /mafia role.",
				strings.Join(missed, ", "))
		}
		h.say(ctx, req.ChatID, "%s", b.String())
		return nil
	}))
}

// roleMessage tells p their role, with target buttons for night roles.
func (h *MafiaHandler) roleMessage(g *mafia.Game, p *mafia.Player) *Message {
	text := roleIntro[p.Role]
	if p.Role == mafia.RoleMurderer {
		var partners []string
		for _, m := range g.Murderers() {
			if m.ID != p.ID {
				partners = append(partners, m.Name)
			}
		}
		if len(partners) > 0 {
			text += "\nPartners: " + strings.Join(partners, ", ")
		}
	}
	msg := &Message{Text: text}
	if p.Alive && g.Phase() == game.PhaseNight {
		msg.Buttons = h.nightButtons(g, p)
	}
	return msg
}

func (h *MafiaHandler) nightButtons(g *mafia.Game, p *mafia.Player) [][]Button {
	var verb mafia.Action
	switch p.Role {
	case mafia.RoleMurderer:
		verb = mafia.ActionKill
	case mafia.RoleDoctor:
		verb = mafia.ActionSave
	case mafia.RoleSheriff:
		verb = mafia.ActionCheck
	default:
		return nil
	}
	var seats []int
	var names []string
	for _, t := range g.Alive() {
		if verb == mafia.ActionKill && t.ID == p.ID {
			continue
		}
		seats = append(seats, t.Seat)
		names = append(names, t.Name)
	}
	return seatButtons(string(game.KindMafia), string(verb), seats, names)
}

// promptNight sends the night roles their action buttons.
func (h *MafiaHandler) promptNight(ctx context.Context, g *mafia.Game) {
	for _, p := range g.Pending() {
		h.direct(ctx, p.ID, &Message{
			Text:    fmt.Sprintf("🌙 Night %d. Choose your target.", g.Round()+1),
			Buttons: h.nightButtons(g, p),
		})
	}
}

func (h *MafiaHandler) seats(g *mafia.Game) string {
	var b strings.Builder
	for _, p := range g.Players() {
		if p.Alive {
			fmt.Fprintf(&b, "%d. %s\n", p.Seat, p.Name)
		} else {
			fmt.Fprintf(&b, "%d. %s ☠️\n", p.Seat, p.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *MafiaHandler) status(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *mafia.Game) error {
		switch g.Phase() {
		case game.PhaseLobby:
			h.say(ctx, req.ChatID, "⏳ Mafia lobby (%d players, %d needed), host %s.\n%s",
				g.Len(), h.minPlayers, g.HostName(), h.seats(g))
		case game.PhaseNight:
			h.say(ctx, req.ChatID, "🌙 Night %d, waiting on %d night roles. Host: %s\n%s",
				g.Round()+1, len(g.Pending()), g.HostName(), h.seats(g))
		default:
			h.say(ctx, req.ChatID, "☀️ Day %d. Host: %s\n%s\n\n%s",
				g.Round()+1, g.HostName(), h.seats(g), h.tally(g.Tally()))
		}
		return nil
	}))
}

func (h *MafiaHandler) tally(counts []mafia.VoteCount) string {
	if len(counts) == 0 {
		return "No votes yet."
	}
	lines := make([]string, 0, len(counts)+1)
	lines = append(lines, "🗳 Votes:")
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("%s: %d", c.Target.Name, c.Votes))
	}
	return strings.Join(lines, "\n")
}

func (h *MafiaHandler) vote(ctx context.Context, req *Request) {
	target := mafia.Target{Text: strings.Join(req.Rest(), " ")}
	if len(req.Mentions) > 0 {
		target.Mention = req.Mentions[0]
	}
	if target.Empty() {
		h.fail(ctx, req, game.Reject(game.ErrInvalidTarget, "Who do you vote for? /mafia vote <seat|name>"))
		return
	}
	h.fail(ctx, req, h.with(req.ChatID, func(g *mafia.Game) error {
		t, err := g.Vote(req.Sender.ID, target)
		if err != nil {
			return err
		}
		h.say(ctx, req.ChatID, "🗳 %s votes for %s.", req.Sender.Name, t.Name)
		return nil
	}))
}

// next resolves the current night or day. The host may always do it; bot
// admins may unstick a game whose host went quiet.
func (h *MafiaHandler) next(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *mafia.Game) error {
		var res *mafia.Resolution
		var err error
		if h.admin(req.Sender.ID) {
			res, err = g.Resolve(ctx)
		} else {
			res, err = g.Next(ctx, req.Sender.ID)
		}
		if err != nil {
			return err
		}
		h.announce(ctx, g, res)
		return nil
	}))
}

// announce reports a resolved night or day to the group and prompts the
// next phase.
func (h *MafiaHandler) announce(ctx context.Context, g *mafia.Game, res *mafia.Resolution) {
	var b strings.Builder
	if res.Phase == game.PhaseNight {
		fmt.Fprintf(&b, "☀️ Day %d.\n", g.Round()+1)
		switch {
		case res.Victim != nil:
			fmt.Fprintf(&b, "%s was killed in the night.", res.Victim.Name)
		case res.Saved:
			b.WriteString("The doctor saved the murderer's victim!")
		default:
			b.WriteString("A quiet night, nobody died.")
		}
	} else {
		b.WriteString(h.tally(res.Tally))
		b.WriteString("\n")
		switch {
		case res.NoVotes:
			b.WriteString("Nobody voted.")
		case res.Tie:
			b.WriteString("The vote is tied, nobody is eliminated.")
		default:
			fmt.Fprintf(&b, "%s was voted out. They were the %s.", res.Eliminated.Name, res.Eliminated.Role)
		}
	}
	if res.NewHost != nil {
		fmt.Fprintf(&b, "\n%s is now the host.", res.NewHost.Name)
	}

	if res.Winner != mafia.WinnerNone {
		if res.Winner == mafia.WinnerTown {
			b.WriteString("\n\n🏆 The town wins!")
		} else {
			b.WriteString("\n\n🔪 The murderer wins!")
		}
		b.WriteString("\n" + h.reveal(g))
		h.say(ctx, g.ScopeID(), "%s", b.String())
		h.record(ctx, g, string(res.Winner), h.results(g, res.Winner))
		h.finish(g)
		return
	}

	msg := &Message{}
	if g.Phase() == game.PhaseDay {
		b.WriteString("\n\nDiscuss and vote with /mafia vote <seat> or the buttons. The host ends the day with /mafia next.")
		var seats []int
		var names []string
		for _, p := range g.Alive() {
			seats = append(seats, p.Seat)
			names = append(names, p.Name)
		}
		msg.Buttons = seatButtons(string(game.KindMafia), "vote", seats, names)
	} else {
		b.WriteString("\n\n🌙 Night falls. Night roles, check your private chat.")
	}
	msg.Text = b.String()
	h.send(ctx, g.ScopeID(), msg)
	if g.Phase() == game.PhaseNight {
		h.promptNight(ctx, g)
	}
}

func (h *MafiaHandler) reveal(g *mafia.Game) string {
	lines := make([]string, 0, g.Len())
	for _, p := range g.Players() {
		mark := ""
		if !p.Alive {
			mark = " ☠️"
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %s%s", p.Seat, p.Name, p.Role, mark))
	}
	return strings.Join(lines, "\n")
}

func (h *MafiaHandler) results(g *mafia.Game, w mafia.Winner) []*model.MatchPlayer {
	var out []*model.MatchPlayer
	for _, p := range g.Players() {
		murderer := p.Role == mafia.RoleMurderer
		score := 0
		if p.Alive {
			score = 1
		}
		out = append(out, &model.MatchPlayer{
			PlayerID: p.ID,
			Name:     p.Name,
			Won:      murderer == (w == mafia.WinnerMurderer),
			Score:    score,
		})
	}
	return out
}
