// Package motion plans pointer glides along a critically damped spring so the cursor
// eases into its destination instead of jumping there.
package motion

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// DefaultFPS is how many pointer updates a glide makes per second.
const DefaultFPS = 60

// settle is the spring's angular frequency times the glide duration. At 7 a critically
// damped spring has covered more than 99% of the distance.
const settle = 7.0

// Point is a screen coordinate.
type Point struct {
	X, Y int
}

// Path returns the frames of a glide from `from` to `to` lasting about d. The last
// frame is always exactly `to`.
func Path(from, to Point, d time.Duration, fps int) []Point {
	if fps <= 0 {
		fps = DefaultFPS
	}
	frames := int(math.Ceil(d.Seconds() * float64(fps)))
	if frames < 1 {
		return []Point{to}
	}

	spring := harmonica.NewSpring(harmonica.FPS(fps), settle/d.Seconds(), 1.0)

	x, y := float64(from.X), float64(from.Y)
	var vx, vy float64
	path := make([]Point, 0, frames)
	for i := 0; i < frames-1; i++ {
		x, vx = spring.Update(x, vx, float64(to.X))
		y, vy = spring.Update(y, vy, float64(to.Y))
		path = append(path, Point{X: int(math.Round(x)), Y: int(math.Round(y))})
	}
	return append(path, to)
}

// Glide walks the pointer along Path, calling step once per frame. It stops early,
// without reaching the destination, when ctx is done.
func Glide(ctx context.Context, from, to Point, d time.Duration, step func(Point)) error {
	path := Path(from, to, d, DefaultFPS)
	tick := time.NewTicker(time.Second / DefaultFPS)
	defer tick.Stop()

	for i, p := range path {
		step(p)
		if i == len(path)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}
