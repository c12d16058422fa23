package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const words = `# sample
cable
Table
cab
cables
camel

cattle
cable
`

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(words))
	require.NoError(t, err)
	assert.Equal(t, 6, d.Len())
	assert.True(t, d.Valid("table"))
	assert.True(t, d.Valid("CABLE"))
	assert.False(t, d.Valid("sample"))
}

func TestSuggest(t *testing.T) {
	d, err := Read(strings.NewReader(words))
	require.NoError(t, err)

	assert.Equal(t, []string{"camel", "cab", "cable", "cables"}, d.Suggest("cabel"))
	assert.Empty(t, d.Suggest("xylophone"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(words), 0o600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.True(t, d.Valid("camel"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestClosest(t *testing.T) {
	got, ok := Closest("/mafai", []string{"/mafia", "/pool", "/cr"}, 2)
	assert.True(t, ok)
	assert.Equal(t, "/mafia", got)

	_, ok = Closest("/zzzzzz", []string{"/mafia", "/pool"}, 2)
	assert.False(t, ok)
}
