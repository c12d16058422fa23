package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"chat-game-bot/internal/handler"
)

// request builds a handler request from an update. It returns nil for
// updates without a chat or sender.
func request(c tele.Context) *handler.Request {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	req := &handler.Request{
		ChatID:  chat.ID,
		Private: chat.Type == tele.ChatPrivate,
		Sender:  handler.Sender{ID: sender.ID, Name: displayName(sender)},
	}
	if msg := c.Message(); msg != nil && c.Callback() == nil {
		req.Args = commandArgs(msg.Text)
		req.Mentions = mentions(msg)
	}
	return req
}

// commandArgs splits the words after a leading /command.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		return fields[1:]
	}
	return fields
}

// mentions returns the ids of users mentioned by text link, in order.
// Plain @username mentions carry no id and stay in the arguments.
func mentions(msg *tele.Message) []int64 {
	var ids []int64
	for _, e := range msg.Entities {
		if e.Type == tele.EntityTMention && e.User != nil {
			ids = append(ids, e.User.ID)
		}
	}
	return ids
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case name != "":
		return name
	case u.Username != "":
		return u.Username
	default:
		return fmt.Sprintf("User%d", u.ID)
	}
}
