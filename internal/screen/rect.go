package screen

import "fmt"

// Rect is a rectangle in surface coordinates. X and Y locate the
// top-left corner; W and H are the outer dimensions including any
// border.
type Rect struct {
	X, Y, W, H int
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// FitsIn reports whether the rectangle lies fully within a surface of
// the given dimensions.
func (r Rect) FitsIn(width, height int) bool {
	return r.X >= 0 && r.Y >= 0 && r.W > 0 && r.H > 0 &&
		r.Right() <= width && r.Bottom() <= height
}

// Inset returns the rectangle shrunk by n cells on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

// clampTo shifts and, when the rectangle is larger than the surface,
// shrinks it so it fits a surface of the given dimensions.
func (r Rect) clampTo(width, height int) Rect {
	if r.W > width {
		r.W = width
	}
	if r.H > height {
		r.H = height
	}
	if r.Right() > width {
		r.X = width - r.W
	}
	if r.Bottom() > height {
		r.Y = height - r.H
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.W, r.H, r.X, r.Y)
}
