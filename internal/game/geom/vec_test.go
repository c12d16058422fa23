package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDegrees(t *testing.T) {
	tests := []struct {
		deg  float64
		want Vec
	}{
		{0, V(1, 0)},
		{90, V(0, 1)},
		{180, V(-1, 0)},
		{270, V(0, -1)},
		{360, V(1, 0)},
		{-90, V(0, -1)},
		{450, V(0, 1)},
	}
	for _, tt := range tests {
		got := FromDegrees(tt.deg)
		assert.InDelta(t, tt.want.X, got.X, 1e-9, "deg=%v", tt.deg)
		assert.InDelta(t, tt.want.Y, got.Y, 1e-9, "deg=%v", tt.deg)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Vec{}, Vec{}.Normalize())
	n := V(3, 4).Normalize()
	assert.InDelta(t, 1.0, n.Len(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)
}

func TestVectorOps(t *testing.T) {
	a, b := V(1, 2), V(4, 6)
	assert.Equal(t, V(5, 8), a.Add(b))
	assert.Equal(t, V(3, 4), b.Sub(a))
	assert.Equal(t, V(2, 4), a.Scale(2))
	assert.Equal(t, 16.0, a.Dot(b))
	assert.Equal(t, 5.0, a.Dist(b))
	assert.Equal(t, 25.0, b.Sub(a).Len2())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 10.0, Clamp(3, 10, 100))
	assert.Equal(t, 100.0, Clamp(300, 10, 100))
	assert.Equal(t, 42.0, Clamp(42, 10, 100))
}
