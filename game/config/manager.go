package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/snake-game-server/game/engine"
	"github.com/wricardo/snake-game-server/game/service"
)

// DefaultID names the built-in ruleset
const DefaultID = "classic"

var (
	ErrConfigNotFound    = errors.New("configuration not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)

//go:embed default.yaml
var defaultYAML []byte

// extensions in lookup order when a ruleset is requested without one
var extensions = []string{".yaml", ".yml", ".json"}

// Manager handles ruleset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. A missing directory is
// not an error: only the embedded default ruleset is served then.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
			return nil, fmt.Errorf("config path is not a directory: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a ruleset by identifier (file name without extension)
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, ok := m.findFile(id)
	if !ok {
		if id == DefaultID {
			config, err := Parse(defaultYAML, ".yaml")
			if err != nil {
				return nil, err
			}
			m.configs[id] = config
			return config, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}

	config, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// findFile resolves an identifier to a file in the config directory
func (m *Manager) findFile(id string) (string, bool) {
	if m.configDir == "" {
		return "", false
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, id+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ListConfigs returns information about all loadable rulesets, sorted by identifier.
// The built-in default is always listed.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	var entries []os.DirEntry
	if m.configDir != "" {
		var err error
		entries, err = os.ReadDir(m.configDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}
	}

	seen := make(map[string]bool)
	var configs []*service.ConfigInfo

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !supported(ext) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ext)
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true
		configs = append(configs, info(entry.Name(), id, config))
	}

	if !seen[DefaultID] {
		configs = append(configs, info("", DefaultID, m.GetDefault()))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default ruleset
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default ruleset by identifier
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached rulesets so edited files are picked up
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic from disk and falls back to the embedded copy
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// LoadFile reads and validates a single ruleset file
func LoadFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return config, nil
}

// Parse decodes a ruleset by extension, then normalizes and validates it
func Parse(data []byte, ext string) (*engine.GameConfig, error) {
	var config engine.GameConfig

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	config.Normalize()
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &config, nil
}

func supported(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func info(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:     filename,
		ConfigID:     id, // This is the identifier to use when starting a game
		Name:         config.Name,
		Description:  config.Description,
		GridSize:     config.GridSize,
		WinThreshold: config.WinThreshold,
	}
}
