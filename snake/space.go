package snake

import "github.com/hoshinonyaruko/snake-autopilot/structs"

// Space is the toroidal W×H coordinate space of a game.
type Space struct {
	W, H int
}

// WrapPosition 确保位置不会超出地图边界
// Only a single step outside the map is handled: movement deltas are unit
// vectors, so one conditional correction per axis is enough.
func WrapPosition(x, y, width, height int) (int, int) {
	if x < 0 {
		x += width
	} else if x >= width {
		x -= width
	}
	if y < 0 {
		y += height
	} else if y >= height {
		y -= height
	}
	return x, y
}

// Wrap brings p back into [0,W)×[0,H). p must be at most one step outside.
func (s Space) Wrap(p structs.Position) structs.Position {
	p.X, p.Y = WrapPosition(p.X, p.Y, s.W, s.H)
	return p
}

// Translate moves p one step along d and wraps.
func (s Space) Translate(p structs.Position, d structs.Direction) structs.Position {
	dx, dy := d.Delta()
	return s.Wrap(structs.Position{X: p.X + dx, Y: p.Y + dy})
}

// Contains reports whether p lies inside the grid.
func (s Space) Contains(p structs.Position) bool {
	return p.X >= 0 && p.X < s.W && p.Y >= 0 && p.Y < s.H
}

// SignedDistance returns the shorter signed distance from a to b on a ring
// of the given size. Ties resolve towards the negative direction.
func SignedDistance(a, b, size int) int {
	return ((b-a)%size+size+size/2)%size - size/2
}
