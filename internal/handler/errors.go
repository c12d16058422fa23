package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
)

var replies = []struct {
	err  error
	text string
}{
	{game.ErrNoActiveGame, "There is no game running here."},
	{game.ErrAlreadyActive, "A game is already running here."},
	{game.ErrLobbyClosed, "The lobby is closed."},
	{game.ErrGameAlreadyStarted, "The game has already started."},
	{game.ErrFull, "The lobby is full."},
	{game.ErrAlreadyJoined, "You have already joined."},
	{game.ErrNotJoined, "You are not in this game."},
	{game.ErrNotHost, "Only the host can do that."},
	{game.ErrNotYourTurn, "It's not your turn."},
	{game.ErrNotYourCell, "That cell belongs to someone else."},
	{game.ErrNotAlive, "Dead players can't do that."},
	{game.ErrInvalidTarget, "No such player."},
	{game.ErrInvalidCell, "That cell is not on the board."},
	{game.ErrInvalidDirection, "Direction must be an angle between 0 and 360."},
	{game.ErrInsufficientPlayers, "Not enough players to begin."},
	{game.ErrWrongPhase, "That is not possible right now."},
	{game.ErrAlreadyActed, "You have already acted."},
	{game.ErrWrongRole, "Your role can't do that."},
	{game.ErrInvalidArgument, "That command doesn't look right. Try help."},
}

// ReplyText returns the message shown to the player for err.
func ReplyText(err error) string {
	var rej *game.RejectError
	if errors.As(err, &rej) {
		return rej.Msg
	}
	for _, r := range replies {
		if errors.Is(err, r.err) {
			return r.text
		}
	}
	return "Something went wrong, please try again."
}

func logRejection(req *Request, err error) {
	ev := log.Debug()
	var rej *game.RejectError
	if !errors.As(err, &rej) {
		ev = log.Error()
	}
	ev.Err(err).
		Int64("chat_id", req.ChatID).
		Int64("user_id", req.Sender.ID).
		Strs("args", req.Args).
		Msg("Command rejected")
}
