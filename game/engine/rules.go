package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidDirection is returned for anything other than UP, DOWN, LEFT or RIGHT
var ErrInvalidDirection = errors.New("invalid direction")

var opposite = map[Direction]Direction{
	Up:    Down,
	Down:  Up,
	Left:  Right,
	Right: Left,
}

// ParseDirection accepts exactly the four cardinal values
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if _, ok := opposite[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// ResolveDirection ignores a request to reverse straight back into the body
func ResolveDirection(current, requested Direction) Direction {
	if opposite[current] == requested {
		return current
	}
	return requested
}

// ComputeNewHead moves head one cell along dir
func ComputeNewHead(head Coord, dir Direction) Coord {
	switch dir {
	case Up:
		head.Row--
	case Down:
		head.Row++
	case Left:
		head.Col--
	case Right:
		head.Col++
	}
	return head
}

// InBounds reports whether c lies on a gridSize×gridSize board
func InBounds(c Coord, gridSize int) bool {
	return c.Row >= 0 && c.Row < gridSize && c.Col >= 0 && c.Col < gridSize
}

// DetectCollision checks the wall and the body as it was before this tick
func DetectCollision(head Coord, body []Coord, gridSize int) bool {
	if !InBounds(head, gridSize) {
		return true
	}
	return contains(body, head)
}

// PlaceApple draws uniformly from the grid until it hits a free cell.
// It returns false when the body already covers the whole board.
func PlaceApple(rng *rand.Rand, body []Coord, gridSize int) (Coord, bool) {
	occupied := make(map[Coord]struct{}, len(body))
	for _, c := range body {
		occupied[c] = struct{}{}
	}
	if len(occupied) >= gridSize*gridSize {
		return Coord{}, false
	}
	for {
		c := Coord{Row: rng.IntN(gridSize), Col: rng.IntN(gridSize)}
		if _, taken := occupied[c]; !taken {
			return c, true
		}
	}
}

func contains(body []Coord, c Coord) bool {
	for _, b := range body {
		if b == c {
			return true
		}
	}
	return false
}
