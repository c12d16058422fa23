package wordchain

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-game-bot/internal/game"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

type stubDict struct {
	words       map[string]bool
	suggestions map[string][]string
}

func (d stubDict) Valid(w string) bool       { return d.words[w] }
func (d stubDict) Suggest(w string) []string { return d.suggestions[w] }

func begun(t *testing.T, opts Options, challenges ...Challenge) *Game {
	t.Helper()
	if opts.TurnTimeout == 0 {
		opts.TurnTimeout = time.Hour
	}
	opts.Rand = rand.New(rand.NewPCG(1, 2))
	g := New(-3, alice, "alice", opts)
	require.NoError(t, g.Join(alice, "alice"))
	require.NoError(t, g.Join(bob, "bob"))
	_, err := g.Begin(context.Background(), alice, Normal)
	require.NoError(t, err)
	if len(challenges) > 0 {
		g.challenges = challenges
	}
	t.Cleanup(g.Close)
	return g
}

func TestValidate(t *testing.T) {
	ch := Challenge{Letter: 'c', Length: 4}
	dict := stubDict{
		words:       map[string]bool{"cable": true},
		suggestions: map[string][]string{"cabel": {"label", "cab", "cable"}, "cxxxx": {"dog"}},
	}

	tests := []struct {
		name     string
		word     string
		dict     Dictionary
		correct  bool
		accepted string
		hint     string
	}{
		{name: "empty", word: "  "},
		{name: "wrong letter", word: "table"},
		{name: "too short", word: "cab"},
		{name: "no dictionary", word: "Cxyz", correct: true, accepted: "cxyz"},
		{name: "known word", word: "cable", dict: dict, correct: true, accepted: "cable"},
		{name: "rejected with hint", word: "cabel", dict: dict, hint: "cable"},
		{name: "unknown", word: "cxxxx", dict: dict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.word, ch, tt.dict)
			assert.Equal(t, tt.correct, v.Correct)
			assert.Equal(t, tt.hint, v.Suggestion)
			if tt.correct {
				assert.Equal(t, tt.accepted, v.Word)
				assert.Empty(t, v.Reason)
			} else {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestMisspelledWordIsNotScored(t *testing.T) {
	dict := stubDict{
		words:       map[string]bool{"cable": true, "candle": true},
		suggestions: map[string][]string{"cqbxe": {"cable"}},
	}
	g := begun(t, Options{Dictionary: dict}, Challenge{Letter: 'c', Length: 5}, Challenge{Letter: 'd', Length: 3})

	rep, err := g.Answer(context.Background(), alice, "cqbxe")
	require.NoError(t, err)
	assert.False(t, rep.Verdict.Correct)
	assert.Equal(t, "cable", rep.Verdict.Suggestion)
	assert.Equal(t, 0, rep.Player.Correct)
	assert.Equal(t, 1, rep.Player.Incorrect)
}

func TestChallengesRespectDifficulty(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	for _, d := range []Difficulty{Easy, Normal, Hard} {
		lo, hi := d.Bounds()
		for _, ch := range newChallenges(rng, d, 200) {
			assert.GreaterOrEqual(t, ch.Length, lo)
			assert.LessOrEqual(t, ch.Length, hi)
			assert.True(t, strings.ContainsRune(alphabet, ch.Letter))
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty("HARD")
	assert.True(t, ok)
	assert.Equal(t, Hard, d)
	d, ok = ParseDifficulty("")
	assert.True(t, ok)
	assert.Equal(t, Normal, d)
	_, ok = ParseDifficulty("insane")
	assert.False(t, ok)
}

func TestTurnsRotateAndGameEnds(t *testing.T) {
	ctx := context.Background()
	g := begun(t, Options{},
		Challenge{Letter: 'a', Length: 3},
		Challenge{Letter: 'b', Length: 3},
		Challenge{Letter: 'c', Length: 3},
	)

	_, err := g.Answer(ctx, bob, "bee")
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	rep, err := g.Answer(ctx, alice, "apple")
	require.NoError(t, err)
	assert.True(t, rep.Verdict.Correct)
	require.NotNil(t, rep.Next)
	assert.Equal(t, bob, rep.Next.Player.ID)
	assert.Equal(t, 'b', rep.Next.Challenge.Letter)
	assert.Equal(t, 2, rep.Next.Number)

	rep, err = g.Answer(ctx, bob, "apple")
	require.NoError(t, err)
	assert.False(t, rep.Verdict.Correct)
	assert.Equal(t, alice, rep.Next.Player.ID)

	rep, err = g.Answer(ctx, alice, "cat")
	require.NoError(t, err)
	assert.Nil(t, rep.Next)
	require.Len(t, rep.Final, 2)
	assert.Equal(t, alice, rep.Final[0].ID)
	assert.Equal(t, 2, rep.Final[0].Correct)
	assert.Equal(t, 1, rep.Final[1].Incorrect)
	assert.True(t, g.Ended())
	assert.False(t, g.TimerArmed())
}

func TestWinningScoreEndsGame(t *testing.T) {
	g := begun(t, Options{WinningScore: 1}, Challenge{Letter: 'a', Length: 3}, Challenge{Letter: 'b', Length: 3})

	rep, err := g.Answer(context.Background(), alice, "ant")
	require.NoError(t, err)
	require.NotNil(t, rep.Final)
	assert.Equal(t, alice, rep.Final[0].ID)
	assert.True(t, g.Ended())
}

func TestTimeoutCountsAsMiss(t *testing.T) {
	ctx := context.Background()
	fired := make(chan uint64, 10)
	g := begun(t, Options{
		TurnTimeout: 20 * time.Millisecond,
		OnTimeout:   func(_ int64, _ uuid.UUID, seq uint64) { fired <- seq },
	})

	var seq uint64
	select {
	case seq = <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("turn timer never fired")
	}

	rep, err := g.Timeout(ctx, seq)
	require.NoError(t, err)
	assert.True(t, rep.TimedOut)
	assert.Equal(t, alice, rep.Player.ID)
	assert.Equal(t, 1, rep.Player.Incorrect)
	assert.Equal(t, bob, rep.Next.Player.ID)

	_, err = g.Timeout(ctx, seq)
	assert.ErrorIs(t, err, ErrStaleTimer)
}

func TestAnswerInvalidatesPendingExpiry(t *testing.T) {
	ctx := context.Background()
	fired := make(chan uint64, 10)
	g := begun(t, Options{
		TurnTimeout: 20 * time.Millisecond,
		OnTimeout:   func(_ int64, _ uuid.UUID, seq uint64) { fired <- seq },
	})

	var seq uint64
	select {
	case seq = <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("turn timer never fired")
	}

	// The player answers before the expiry is processed.
	turn := g.CurrentTurn()
	_, err := g.Answer(ctx, alice, string(turn.Challenge.Letter)+"zzzzzzzz")
	require.NoError(t, err)

	_, err = g.Timeout(ctx, seq)
	assert.ErrorIs(t, err, ErrStaleTimer)
	assert.Equal(t, 1, g.At(0).Correct)
	assert.Zero(t, g.At(0).Incorrect)
}

func TestCloseStopsTimer(t *testing.T) {
	g := begun(t, Options{})
	assert.True(t, g.TimerArmed())
	g.Close()
	assert.False(t, g.TimerArmed())
}

func TestStandingsOrder(t *testing.T) {
	g := New(-1, 1, "a", Options{})
	require.NoError(t, g.Join(1, "a"))
	require.NoError(t, g.Join(2, "b"))
	require.NoError(t, g.Join(3, "c"))
	ps := g.Players()
	ps[0].Correct, ps[0].Incorrect = 3, 4
	ps[1].Correct, ps[1].Incorrect = 5, 0
	ps[2].Correct, ps[2].Incorrect = 3, 1

	got := g.Standings()
	assert.Equal(t, []int64{2, 3, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
}
