package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(V(0, 0, 0), V(3, 0, 4)), 1e-9)
	assert.InDelta(t, 3.0, Distance(V(1, 2, 3), V(1, 5, 3)), 1e-9)
}

func TestNormalized(t *testing.T) {
	n := V(0, 0, 10).Normalized()
	assert.Equal(t, V(0, 0, 1), n)
	assert.InDelta(t, 1.0, V(3, 4, 12).Normalized().Len(), 1e-9)
	assert.Equal(t, Zero, Zero.Normalized(), "zero vector must stay zero")
}

func TestDirectionDot(t *testing.T) {
	away := V(-1, 0, 0)
	toTarget := Direction(V(3, 0, 0), V(0, 0, 0))
	assert.InDelta(t, 1.0, away.Dot(toTarget), 1e-9)
	assert.InDelta(t, -1.0, V(1, 0, 0).Dot(toTarget), 1e-9)
}
