package main

import "github.com/wricardo/snake-game-server/game/engine"

// Fixed order keeps choices deterministic between runs
var directions = []engine.Direction{engine.Up, engine.Right, engine.Down, engine.Left}

// Strategy picks moves for one board size. It takes the shortest path to
// the apple when the snake still has room after the first step, and
// otherwise steers toward the largest open region.
type Strategy struct {
	gridSize int
}

func NewStrategy(gridSize int) *Strategy {
	return &Strategy{gridSize: gridSize}
}

// NextMove returns the direction for the next tick. ok is false when
// every move collides; the current heading is returned in that case.
func (s *Strategy) NextMove(snap engine.Snapshot) (dir engine.Direction, ok bool) {
	if len(snap.Snake) == 0 {
		return snap.Direction, false
	}

	blocked := s.occupied(snap.Snake)
	head := snap.Snake[0]

	if path := s.BFS(head, snap.Apple, snap.Direction, blocked); len(path) > 0 {
		next := engine.ComputeNewHead(head, path[0])
		if s.floodFill(next, blocked) >= len(snap.Snake) {
			return path[0], true
		}
	}

	best, bestRoom := snap.Direction, -1
	for _, d := range s.safeMoves(head, snap.Direction, blocked) {
		room := s.floodFill(engine.ComputeNewHead(head, d), blocked)
		if room > bestRoom {
			best, bestRoom = d, room
		}
	}
	return best, bestRoom >= 0
}

// BFS finds a shortest path of directions from start to goal. The first
// step never reverses heading since the server ignores reversals.
func (s *Strategy) BFS(start, goal engine.Coord, heading engine.Direction, blocked map[engine.Coord]bool) []engine.Direction {
	type node struct {
		at   engine.Coord
		path []engine.Direction
	}

	seen := map[engine.Coord]bool{start: true}
	queue := []node{{at: start}}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			if len(n.path) == 0 && isReversal(heading, d) {
				continue
			}
			next := engine.ComputeNewHead(n.at, d)
			if seen[next] || !s.isFree(next, blocked) {
				continue
			}

			path := make([]engine.Direction, len(n.path), len(n.path)+1)
			copy(path, n.path)
			path = append(path, d)

			if next == goal {
				return path
			}
			seen[next] = true
			queue = append(queue, node{at: next, path: path})
		}
	}
	return nil
}

func (s *Strategy) safeMoves(head engine.Coord, heading engine.Direction, blocked map[engine.Coord]bool) []engine.Direction {
	var moves []engine.Direction
	for _, d := range directions {
		if isReversal(heading, d) {
			continue
		}
		if s.isFree(engine.ComputeNewHead(head, d), blocked) {
			moves = append(moves, d)
		}
	}
	return moves
}

// floodFill counts the free cells reachable from start, start included
func (s *Strategy) floodFill(start engine.Coord, blocked map[engine.Coord]bool) int {
	if !s.isFree(start, blocked) {
		return 0
	}

	seen := map[engine.Coord]bool{start: true}
	stack := []engine.Coord{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range directions {
			next := engine.ComputeNewHead(c, d)
			if !seen[next] && s.isFree(next, blocked) {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return len(seen)
}

// The whole body blocks, tail included: the server checks collisions
// against the body as it was before the tick.
func (s *Strategy) occupied(body []engine.Coord) map[engine.Coord]bool {
	blocked := make(map[engine.Coord]bool, len(body))
	for _, c := range body {
		blocked[c] = true
	}
	return blocked
}

func (s *Strategy) isFree(c engine.Coord, blocked map[engine.Coord]bool) bool {
	return engine.InBounds(c, s.gridSize) && !blocked[c]
}

func isReversal(heading, d engine.Direction) bool {
	return engine.ResolveDirection(heading, d) != d
}
