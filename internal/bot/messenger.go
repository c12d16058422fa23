package bot

import (
	"bytes"
	"context"

	tele "gopkg.in/telebot.v3"

	"chat-game-bot/internal/handler"
)

// messenger delivers handler messages through the Bot API.
type messenger struct {
	bot *tele.Bot
}

func (m *messenger) SendChat(ctx context.Context, chatID int64, msg *handler.Message) error {
	return m.send(ctx, &tele.Chat{ID: chatID}, msg)
}

func (m *messenger) SendDirect(ctx context.Context, userID int64, msg *handler.Message) error {
	return m.send(ctx, &tele.User{ID: userID}, msg)
}

func (m *messenger) send(ctx context.Context, to tele.Recipient, msg *handler.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var what any = msg.Text
	if len(msg.Image) > 0 {
		what = &tele.Photo{File: tele.FromReader(bytes.NewReader(msg.Image)), Caption: msg.Text}
	}
	var opts []any
	if markup := inlineKeyboard(msg.Buttons); markup != nil {
		opts = append(opts, markup)
	}
	_, err := m.bot.Send(to, what, opts...)
	return err
}

// inlineKeyboard converts handler buttons to an inline keyboard.
func inlineKeyboard(buttons [][]handler.Button) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tele.InlineButton, 0, len(buttons))
	for _, row := range buttons {
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tele.InlineButton{Text: btn.Text, Data: btn.Data})
		}
		rows = append(rows, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
