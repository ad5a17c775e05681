package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/snake-game-server/game/engine"
)

func writeConfigFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

const smallYAML = `name: small
description: quick
grid_size: 10
win_threshold: 5
start_row: 3
start_col: 4
start_direction: LEFT
`

const tinyJSON = `{
  "name": "tiny",
  "grid_size": 6,
  "win_threshold": 4,
  "start": [2, 1],
  "start_direction": "DOWN"
}`

func TestNewManager(t *testing.T) {
	t.Run("missing directory falls back to embedded default", func(t *testing.T) {
		m, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		def := m.GetDefault()
		if def.Name != "classic" || def.GridSize != 20 || def.WinThreshold != 10 {
			t.Errorf("Unexpected default: %+v", def)
		}
		if def.Start != (engine.Coord{Row: 5, Col: 5}) || def.StartDirection != engine.Up {
			t.Errorf("Unexpected default start: %v %s", def.Start, def.StartDirection)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		m, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetDefault() == nil {
			t.Error("Expected default config")
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "plain.txt", "x")
		if _, err := NewManager(filepath.Join(dir, "plain.txt")); err == nil {
			t.Error("Expected error when config path is a file")
		}
	})

	t.Run("classic on disk overrides embedded", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "classic.yaml", "name: classic\ngrid_size: 30\nwin_threshold: 12\nstart_row: 1\nstart_col: 1\n")
		m, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetDefault().GridSize != 30 {
			t.Errorf("Expected disk classic, got grid %d", m.GetDefault().GridSize)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "small.yaml", smallYAML)
	writeConfigFile(t, dir, "tiny.json", tinyJSON)
	writeConfigFile(t, dir, "broken.yml", "name: [unclosed")
	writeConfigFile(t, dir, "huge.yaml", "name: huge\ngrid_size: 500\nwin_threshold: 10\n")

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	t.Run("yaml", func(t *testing.T) {
		config, err := m.LoadConfig("small")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.GridSize != 10 || config.WinThreshold != 5 {
			t.Errorf("Unexpected config: %+v", config)
		}
		if config.Start != (engine.Coord{Row: 3, Col: 4}) {
			t.Errorf("Expected start (3,4), got %v", config.Start)
		}
		if config.StartDirection != engine.Left {
			t.Errorf("Expected LEFT, got %s", config.StartDirection)
		}
	})

	t.Run("json", func(t *testing.T) {
		config, err := m.LoadConfig("tiny")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.Start != (engine.Coord{Row: 2, Col: 1}) {
			t.Errorf("Expected start (2,1), got %v", config.Start)
		}
	})

	t.Run("with extension", func(t *testing.T) {
		if _, err := m.LoadConfig("tiny.json"); err != nil {
			t.Errorf("LoadConfig with extension failed: %v", err)
		}
	})

	tests := []struct {
		name     string
		id       string
		expected error
	}{
		{"not found", "missing", ErrConfigNotFound},
		{"path traversal", "../etc/passwd", ErrConfigNotFound},
		{"empty", "", ErrConfigNotFound},
		{"out of range", "huge", ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.LoadConfig(tt.id)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		if _, err := m.LoadConfig("broken"); err == nil {
			t.Error("Expected parse error")
		}
	})

	t.Run("invalid wraps engine error", func(t *testing.T) {
		_, err := m.LoadConfig("huge")
		if !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Expected engine.ErrInvalidConfig in chain, got %v", err)
		}
	})

	t.Run("cached", func(t *testing.T) {
		a, _ := m.LoadConfig("small")
		b, _ := m.LoadConfig("small")
		if a != b {
			t.Error("Expected cached pointer on second load")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "small.yaml", smallYAML)
	writeConfigFile(t, dir, "tiny.json", tinyJSON)
	writeConfigFile(t, dir, "broken.yml", "name: [unclosed")
	writeConfigFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}

	var ids []string
	for _, c := range configs {
		ids = append(ids, c.ConfigID)
	}
	expected := []string{"classic", "small", "tiny"}
	if len(ids) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, ids)
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, ids)
			break
		}
	}
	if configs[1].Filename != "small.yaml" || configs[1].WinThreshold != 5 {
		t.Errorf("Unexpected info: %+v", configs[1])
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "small.yaml", smallYAML)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if _, err := m.LoadConfig("small"); err != nil {
		t.Fatal(err)
	}

	writeConfigFile(t, dir, "small.yaml", "name: small\ngrid_size: 12\nwin_threshold: 5\nstart_row: 1\nstart_col: 1\n")
	if err := m.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	config, _ := m.LoadConfig("small")
	if config.GridSize != 12 {
		t.Errorf("Expected reloaded grid 12, got %d", config.GridSize)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "small.yaml", smallYAML)
	m, _ := NewManager(dir)

	if err := m.SetDefault("small"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if m.GetDefault().Name != "small" {
		t.Errorf("Expected small default, got %s", m.GetDefault().Name)
	}
	if err := m.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse([]byte(smallYAML), ".toml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	config, err := Parse([]byte("name: bare\ngrid_size: 8\nwin_threshold: 3\nstart_row: 2\nstart_col: 2\n"), ".YML")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if config.StartDirection != engine.Up {
		t.Errorf("Expected heading to default to UP, got %s", config.StartDirection)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "small.yaml", smallYAML)
	writeConfigFile(t, dir, "tiny.json", tinyJSON)
	m, _ := NewManager(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "small"
			if i%2 == 0 {
				id = "tiny"
			}
			if _, err := m.LoadConfig(id); err != nil {
				t.Errorf("LoadConfig failed: %v", err)
			}
			_, _ = m.ListConfigs()
			_ = m.GetDefault()
		}(i)
	}
	wg.Wait()
}

func TestRepositoryRulesets(t *testing.T) {
	m, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) < 4 {
		t.Errorf("Expected shipped rulesets to load, got %d", len(configs))
	}
}
