package motion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_EndsAtTarget(t *testing.T) {
	from, to := Point{0, 0}, Point{640, 480}
	path := Path(from, to, 500*time.Millisecond, 60)

	require.Len(t, path, 30)
	assert.Equal(t, to, path[len(path)-1])
}

func TestPath_NeverOvershoots(t *testing.T) {
	from, to := Point{900, 100}, Point{100, 700}
	path := Path(from, to, 800*time.Millisecond, 60)

	prev := from
	for _, p := range path {
		assert.LessOrEqual(t, p.X, prev.X)
		assert.GreaterOrEqual(t, p.Y, prev.Y)
		assert.GreaterOrEqual(t, p.X, to.X)
		assert.LessOrEqual(t, p.Y, to.Y)
		prev = p
	}
}

func TestPath_MostlyThereBeforeTheLastFrame(t *testing.T) {
	to := Point{1000, 0}
	path := Path(Point{0, 0}, to, 300*time.Millisecond, 60)

	require.Greater(t, len(path), 2)
	assert.InDelta(t, to.X, path[len(path)-2].X, 20)
}

func TestPath_ZeroDurationJumps(t *testing.T) {
	assert.Equal(t, []Point{{5, 5}}, Path(Point{0, 0}, Point{5, 5}, 0, 60))
}

func TestGlide(t *testing.T) {
	var got []Point
	err := Glide(context.Background(), Point{0, 0}, Point{10, 10}, 50*time.Millisecond, func(p Point) {
		got = append(got, p)
	})
	require.NoError(t, err)
	assert.Equal(t, Point{10, 10}, got[len(got)-1])
}

func TestGlide_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var steps int
	err := Glide(ctx, Point{0, 0}, Point{100, 100}, time.Second, func(Point) { steps++ })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, steps)
}
