package core

import "fmt"

type Color struct {
	R, G, B, A float32
}

var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
)

// Premultiplied returns the colour with RGB scaled by alpha.
func (c Color) Premultiplied() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// Over composites c (premultiplied) on top of dst (premultiplied):
// result = c + (1 - c.A) * dst.
func (c Color) Over(dst Color) Color {
	k := 1 - c.A
	return Color{
		R: c.R + k*dst.R,
		G: c.G + k*dst.G,
		B: c.B + k*dst.B,
		A: c.A + k*dst.A,
	}
}

// Viewport is a device-space rectangle in pixels. It is replaced wholesale on
// resize and never mutated during a frame.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// NewViewport returns a viewport anchored at the origin.
func NewViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

// Valid reports whether both dimensions are at least one pixel.
func (v Viewport) Valid() bool {
	return v.Width >= 1 && v.Height >= 1
}

// Area is the number of pixels covered by the viewport.
func (v Viewport) Area() int {
	if !v.Valid() {
		return 0
	}
	return v.Width * v.Height
}

// Contains reports whether the device pixel (x, y) lies inside
// [0, Width) × [0, Height), relative to the viewport origin.
func (v Viewport) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.Width && y < v.Height
}

// NDCToPixel maps normalised device coordinates in [-1, 1] to a pixel index
// relative to the viewport origin. The result may fall outside the viewport.
func (v Viewport) NDCToPixel(ndcX, ndcY float32) (int, int) {
	fx := (ndcX + 1) * 0.5 * float32(v.Width)
	fy := (ndcY + 1) * 0.5 * float32(v.Height)
	return floorInt(fx), floorInt(fy)
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.X, v.Y)
}

func floorInt(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}
