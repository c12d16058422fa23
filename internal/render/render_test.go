package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/pool"
)

func TestChainReactionImage(t *testing.T) {
	g := chainreaction.New(-1, 1, "a")
	require.NoError(t, g.Join(1, "a"))
	require.NoError(t, g.Join(2, "b"))
	require.NoError(t, g.Begin(context.Background(), 1, 4, 3))
	_, err := g.Place(context.Background(), 1, 0, 0)
	require.NoError(t, err)

	data, err := New().ChainReaction(g.Snapshot())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4*cellSize+2*margin, img.Bounds().Dx())
	assert.Equal(t, 3*cellSize+2*margin, img.Bounds().Dy())
}

func TestPoolImage(t *testing.T) {
	g := pool.New(-1, 1, "a")
	require.NoError(t, g.Join(2, "b"))
	require.NoError(t, g.Begin(context.Background(), 1))

	data, err := New().Pool(g.Snapshot())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int(pool.TableWidth)+2*border, img.Bounds().Dx())
	assert.Equal(t, int(pool.TableHeight)+2*border, img.Bounds().Dy())
}
