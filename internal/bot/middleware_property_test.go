package bot

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"chat-game-bot/internal/config"
	"chat-game-bot/internal/handler"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b
}

func groupUpdate(chatID, userID int64, text string) tele.Update {
	return tele.Update{Message: &tele.Message{
		Chat:   &tele.Chat{ID: chatID, Type: tele.ChatGroup},
		Sender: &tele.User{ID: userID, FirstName: "Ann"},
		Text:   text,
	}}
}

// TestAdminCheckProperty checks that a user is an admin exactly when their
// id is configured.
func TestAdminCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1000000000), 1, 10).Draw(t, "adminIDs")
		cfg := &config.Config{Admin: config.AdminConfig{UserIDs: adminIDs}}

		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		if got, want := cfg.IsAdmin(userID), slices.Contains(adminIDs, userID); got != want {
			t.Fatalf("IsAdmin(%d) = %v with admins %v", userID, got, adminIDs)
		}

		known := adminIDs[rapid.IntRange(0, len(adminIDs)-1).Draw(t, "index")]
		if !cfg.IsAdmin(known) {
			t.Fatalf("admin %d not recognized", known)
		}
	})
}

// TestWhitelistMiddlewareProperty drives the middleware with random group
// updates: only whitelisted groups reach the handler.
func TestWhitelistMiddlewareProperty(t *testing.T) {
	b := offlineBot(t)
	rapid.Check(t, func(rt *rapid.T) {
		chats := rapid.SliceOfN(rapid.Int64Range(-1000000000, -1), 1, 10).Draw(rt, "chats")
		cfg := &config.Config{Whitelist: config.WhitelistConfig{ChatIDs: chats}}
		chatID := rapid.Int64Range(-1000000000, -1).Draw(rt, "chatID")

		reached := false
		h := WhitelistMiddleware(cfg)(func(tele.Context) error {
			reached = true
			return nil
		})
		if err := h(b.NewContext(groupUpdate(chatID, 7, "/cr start"))); err != nil {
			rt.Fatalf("middleware: %v", err)
		}
		if want := slices.Contains(chats, chatID); reached != want {
			rt.Fatalf("chat %d reached=%v with whitelist %v", chatID, reached, chats)
		}
	})
}

func TestWhitelistAllowsPrivateAndEmptyList(t *testing.T) {
	b := offlineBot(t)
	strict := &config.Config{Whitelist: config.WhitelistConfig{ChatIDs: []int64{-5}}}

	calls := 0
	next := func(tele.Context) error { calls++; return nil }

	private := tele.Update{Message: &tele.Message{
		Chat:   &tele.Chat{ID: 7, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: 7},
		Text:   "/mafia kill 2",
	}}
	require.NoError(t, WhitelistMiddleware(strict)(next)(b.NewContext(private)))
	assert.Equal(t, 1, calls)

	open := &config.Config{}
	require.NoError(t, WhitelistMiddleware(open)(next)(b.NewContext(groupUpdate(-99, 7, "/pool start"))))
	assert.Equal(t, 2, calls)

	require.NoError(t, WhitelistMiddleware(strict)(next)(b.NewContext(groupUpdate(-99, 7, "/pool start"))))
	assert.Equal(t, 2, calls)
}

func TestRequestFromMessage(t *testing.T) {
	b := offlineBot(t)
	u := groupUpdate(-5, 7, "/mafia vote Bob")
	u.Message.Entities = tele.Entities{
		{Type: tele.EntityCommand, Offset: 0, Length: 6},
		{Type: tele.EntityTMention, Offset: 12, Length: 3, User: &tele.User{ID: 42}},
	}

	req := request(b.NewContext(u))
	require.NotNil(t, req)
	assert.Equal(t, int64(-5), req.ChatID)
	assert.False(t, req.Private)
	assert.Equal(t, "Ann", req.Sender.Name)
	assert.Equal(t, []string{"vote", "Bob"}, req.Args)
	assert.Equal(t, []int64{42}, req.Mentions)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ann Lee", displayName(&tele.User{FirstName: "Ann", LastName: "Lee"}))
	assert.Equal(t, "ann_l", displayName(&tele.User{Username: "ann_l"}))
	assert.Equal(t, "User9", displayName(&tele.User{ID: 9}))
}

func TestInlineKeyboard(t *testing.T) {
	assert.Nil(t, inlineKeyboard(nil))
	markup := inlineKeyboard([][]handler.Button{{{Text: "1. Ann", Data: "mafia|vote|1"}}})
	require.NotNil(t, markup)
	assert.Equal(t, "mafia|vote|1", markup.InlineKeyboard[0][0].Data)
}
