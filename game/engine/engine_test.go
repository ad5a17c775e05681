package engine

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

func newTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	eng, err := NewEngineWithRand("test-game", DefaultConfig(), rand.New(rand.NewPCG(42, 7)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

// parkApple moves the apple somewhere harmless so the next tick is a plain move
func parkApple(eng *GameEngine) {
	eng.state.Apple = Coord{Row: 19, Col: 19}
}

func TestNewEngine(t *testing.T) {
	eng := newTestEngine(t)
	state := eng.GetState()

	if state.GameID != "test-game" {
		t.Errorf("Expected game ID test-game, got %s", state.GameID)
	}
	if !reflect.DeepEqual(state.Snake, []Coord{{Row: 5, Col: 5}}) {
		t.Errorf("Expected single cell snake at (5,5), got %v", state.Snake)
	}
	if state.Direction != Up {
		t.Errorf("Expected UP, got %s", state.Direction)
	}
	if state.Score != 0 {
		t.Errorf("Expected score 0, got %d", state.Score)
	}
	if state.Status != StatusOngoing {
		t.Errorf("Expected ongoing, got %s", state.Status)
	}
	if state.Apple == state.Head() {
		t.Error("Apple placed on the snake")
	}
	if !InBounds(state.Apple, DefaultGridSize) {
		t.Errorf("Apple out of bounds: %v", state.Apple)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.GridSize = 1
	if _, err := NewEngine("x", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestMove_PlainStepKeepsLength(t *testing.T) {
	eng := newTestEngine(t)
	parkApple(eng)

	outcome, err := eng.Move("LEFT")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if outcome.Ate {
		t.Error("Did not expect to eat")
	}
	if len(outcome.Snapshot.Snake) != 1 {
		t.Errorf("Expected length 1, got %d", len(outcome.Snapshot.Snake))
	}
	if outcome.Snapshot.Snake[0] != (Coord{Row: 5, Col: 4}) {
		t.Errorf("Expected head (5,4), got %v", outcome.Snapshot.Snake[0])
	}
	if outcome.Snapshot.Direction != Left {
		t.Errorf("Expected direction LEFT, got %s", outcome.Snapshot.Direction)
	}
	if outcome.Snapshot.Status != StatusOngoing {
		t.Errorf("Expected ongoing, got %s", outcome.Snapshot.Status)
	}
}

func TestMove_EatingGrowsByOne(t *testing.T) {
	eng := newTestEngine(t)
	eng.state.Apple = Coord{Row: 4, Col: 5}

	outcome, err := eng.Move("UP")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !outcome.Ate {
		t.Error("Expected to eat the apple")
	}
	if outcome.Snapshot.Score != 1 {
		t.Errorf("Expected score 1, got %d", outcome.Snapshot.Score)
	}
	want := []Coord{{Row: 4, Col: 5}, {Row: 5, Col: 5}}
	if !reflect.DeepEqual(outcome.Snapshot.Snake, want) {
		t.Errorf("Expected %v, got %v", want, outcome.Snapshot.Snake)
	}
	if contains(outcome.Snapshot.Snake, outcome.Snapshot.Apple) {
		t.Errorf("New apple %v placed on the snake", outcome.Snapshot.Apple)
	}
}

func TestMove_ReverseIsIgnored(t *testing.T) {
	eng := newTestEngine(t)
	parkApple(eng)

	outcome, err := eng.Move("DOWN")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if outcome.Snapshot.Snake[0] != (Coord{Row: 4, Col: 5}) {
		t.Errorf("Expected the snake to keep moving up to (4,5), got %v", outcome.Snapshot.Snake[0])
	}
	if outcome.Snapshot.Direction != Up {
		t.Errorf("Expected heading to stay UP, got %s", outcome.Snapshot.Direction)
	}
}

func TestMove_InvalidDirection(t *testing.T) {
	eng := newTestEngine(t)
	before := eng.Snapshot()

	_, err := eng.Move("SIDEWAYS")
	if !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("Expected ErrInvalidDirection, got %v", err)
	}
	if !reflect.DeepEqual(before, eng.Snapshot()) {
		t.Error("State changed after a rejected move")
	}
}

func TestMove_WallCollision(t *testing.T) {
	eng := newTestEngine(t)
	parkApple(eng)

	// (5,5) heading up: five steps reach row 0, the sixth leaves the board
	for i := 0; i < 5; i++ {
		outcome, err := eng.Move("UP")
		if err != nil {
			t.Fatalf("Move %d failed: %v", i, err)
		}
		if outcome.Snapshot.Status != StatusOngoing {
			t.Fatalf("Move %d ended the game early", i)
		}
	}

	outcome, err := eng.Move("UP")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !outcome.Collided || outcome.Snapshot.Status != StatusGameOver {
		t.Errorf("Expected game_over after leaving the board, got %s", outcome.Snapshot.Status)
	}
	if outcome.Snapshot.Snake[0] != (Coord{Row: 0, Col: 5}) {
		t.Errorf("Expected the body to stay at (0,5), got %v", outcome.Snapshot.Snake[0])
	}
}

func TestMove_SelfCollision(t *testing.T) {
	eng := newTestEngine(t)
	parkApple(eng)
	eng.state.Snake = []Coord{{Row: 5, Col: 5}, {Row: 6, Col: 5}, {Row: 6, Col: 4}, {Row: 5, Col: 4}, {Row: 4, Col: 4}}
	eng.state.Direction = Up

	outcome, err := eng.Move("LEFT")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if outcome.Snapshot.Status != StatusGameOver {
		t.Errorf("Expected game_over after hitting the body, got %s", outcome.Snapshot.Status)
	}
}

func TestMove_GameOverIsFrozen(t *testing.T) {
	eng := newTestEngine(t)
	eng.state.Snake = []Coord{{Row: 0, Col: 0}}
	eng.state.Direction = Up

	if _, err := eng.Move("UP"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !eng.IsGameOver() {
		t.Fatal("Expected game over")
	}

	frozen := eng.Snapshot()
	for _, dir := range []string{"DOWN", "RIGHT", "garbage", "LEFT"} {
		outcome, err := eng.Move(dir)
		if err != nil {
			t.Fatalf("Move on a finished game should not error, got %v", err)
		}
		if !outcome.NoOp {
			t.Error("Expected NoOp outcome")
		}
		if !reflect.DeepEqual(outcome.Snapshot, frozen) {
			t.Errorf("Expected frozen snapshot %+v, got %+v", frozen, outcome.Snapshot)
		}
	}
}

func TestMove_WinScenario(t *testing.T) {
	eng := newTestEngine(t)

	// Up the column to row 0, then right along the top edge; an apple waits in every next cell
	path := []string{"UP", "UP", "UP", "UP", "UP", "RIGHT", "RIGHT", "RIGHT", "RIGHT", "RIGHT"}
	for i, dir := range path {
		head := eng.state.Head()
		eng.state.Apple = ComputeNewHead(head, ResolveDirection(eng.state.Direction, Direction(dir)))

		before := len(eng.state.Snake)
		outcome, err := eng.Move(dir)
		if err != nil {
			t.Fatalf("Move %d failed: %v", i+1, err)
		}
		if len(outcome.Snapshot.Snake) != before+1 {
			t.Fatalf("Move %d: expected growth to %d, got %d", i+1, before+1, len(outcome.Snapshot.Snake))
		}

		if i < len(path)-1 {
			if outcome.Won || outcome.Snapshot.Status != StatusOngoing {
				t.Fatalf("Move %d: unexpected status %s", i+1, outcome.Snapshot.Status)
			}
			continue
		}

		if !outcome.Won {
			t.Error("Expected the tenth apple to win")
		}
		if outcome.Snapshot.Status != StatusSuccess {
			t.Errorf("Expected success, got %s", outcome.Snapshot.Status)
		}
		if outcome.Snapshot.Score != 10 {
			t.Errorf("Expected score 10, got %d", outcome.Snapshot.Score)
		}
	}

	parkApple(eng)
	outcome, err := eng.Move("RIGHT")
	if err != nil {
		t.Fatalf("Move after win failed: %v", err)
	}
	if outcome.Won {
		t.Error("Win must only be reported once")
	}
	if outcome.Snapshot.Status != StatusSuccess {
		t.Errorf("Expected status to stay success, got %s", outcome.Snapshot.Status)
	}
	if outcome.Snapshot.Snake[0] != (Coord{Row: 0, Col: 11}) {
		t.Errorf("Expected simulation to continue to (0,11), got %v", outcome.Snapshot.Snake[0])
	}

	// Heading up from the top row leaves the board
	outcome, _ = eng.Move("UP")
	if outcome.Snapshot.Status != StatusGameOver {
		t.Errorf("Expected game_over from success, got %s", outcome.Snapshot.Status)
	}
}

func TestMove_RandomWalkInvariants(t *testing.T) {
	dirs := []string{"UP", "DOWN", "LEFT", "RIGHT"}
	rng := rand.New(rand.NewPCG(3, 9))

	for game := 0; game < 50; game++ {
		eng, err := NewEngineWithRand("walk", DefaultConfig(), rand.New(rand.NewPCG(uint64(game), 1)))
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}

		for step := 0; step < 200 && !eng.IsGameOver(); step++ {
			before := len(eng.state.Snake)
			outcome, err := eng.Move(dirs[rng.IntN(len(dirs))])
			if err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			snap := outcome.Snapshot
			if snap.Status == StatusGameOver {
				if len(snap.Snake) != before {
					t.Fatalf("Collision changed the body length")
				}
				break
			}

			want := before
			if outcome.Ate {
				want++
			}
			if len(snap.Snake) != want {
				t.Fatalf("Expected length %d, got %d", want, len(snap.Snake))
			}
			if contains(snap.Snake, snap.Apple) {
				t.Fatalf("Apple %v inside the snake", snap.Apple)
			}
			seen := map[Coord]bool{}
			for _, c := range snap.Snake {
				if seen[c] {
					t.Fatalf("Duplicate body cell %v", c)
				}
				if !InBounds(c, DefaultGridSize) {
					t.Fatalf("Body cell %v out of bounds", c)
				}
				seen[c] = true
			}
		}
	}
}

func TestMove_FillingTheBoardEndsGame(t *testing.T) {
	config := &GameConfig{
		Name:           "full",
		GridSize:       5,
		WinThreshold:   3,
		Start:          Coord{Row: 2, Col: 2},
		StartDirection: Up,
	}
	eng, err := NewEngineWithRand("full", config, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Serpentine through every cell but (4,4), head last
	var path []Coord
	for row := 0; row < 5; row++ {
		for i := 0; i < 5; i++ {
			col := i
			if row%2 == 1 {
				col = 4 - i
			}
			path = append(path, Coord{Row: row, Col: col})
		}
	}
	path = path[:24]
	body := make([]Coord, len(path))
	for i, c := range path {
		body[len(path)-1-i] = c
	}

	eng.state.Snake = body
	eng.state.Direction = Right
	eng.state.Apple = Coord{Row: 4, Col: 4}
	eng.state.Score = 23
	eng.state.Status = StatusSuccess

	outcome, err := eng.Move("RIGHT")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	snap := outcome.Snapshot
	if !outcome.Ate || snap.Score != 24 || len(snap.Snake) != 25 {
		t.Fatalf("Expected the last apple eaten, got ate=%v score=%d length=%d", outcome.Ate, snap.Score, len(snap.Snake))
	}
	if snap.Status != StatusGameOver {
		t.Errorf("Expected game_over on a full board, got %s", snap.Status)
	}
	if snap.Apple != NoApple {
		t.Errorf("Expected NoApple, got %s", snap.Apple)
	}
	for _, c := range snap.Snake {
		if c == snap.Apple {
			t.Fatalf("Apple %s reported inside the snake", snap.Apple)
		}
	}

	// Frozen from here on
	again, _ := eng.Move("UP")
	if !again.NoOp || again.Snapshot.Apple != NoApple {
		t.Errorf("Expected a frozen no-op, got %+v", again)
	}
}
