package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = engine.ErrInvalidConfig
)

const (
	SourceFile    = "file"
	SourceDefault = "default"
)

type cached struct {
	cfg    catalog.Config
	source string
}

// Manager handles game configuration loading and caching. Each game reads
// <slug>.json from the config directory, falling back to built-in defaults
// when the file is absent.
type Manager struct {
	configDir string
	configs   map[engine.GameID]cached
	log       zerolog.Logger
	mu        sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string, log zerolog.Logger) (*Manager, error) {
	info, err := os.Stat(configDir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat config directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", configDir)
	}

	return &Manager{
		configDir: configDir,
		configs:   make(map[engine.GameID]cached),
		log:       log,
	}, nil
}

// Filename returns the config file name for a game
func Filename(game engine.GameID) string {
	return game.Slug() + ".json"
}

// Path returns where the config file for game lives
func (m *Manager) Path(game engine.GameID) string {
	return filepath.Join(m.configDir, Filename(game))
}

// LoadConfig returns the tuning for game, from file when one exists
func (m *Manager) LoadConfig(game engine.GameID) (catalog.Config, error) {
	c, err := m.load(game)
	if err != nil {
		return nil, err
	}
	return c.cfg, nil
}

func (m *Manager) load(game engine.GameID) (cached, error) {
	m.mu.RLock()
	if c, exists := m.configs[game]; exists {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if c, exists := m.configs[game]; exists {
		return c, nil
	}

	c := cached{source: SourceFile}
	cfg, err := m.LoadFile(game)
	switch {
	case errors.Is(err, ErrConfigNotFound):
		cfg, err = catalog.DefaultConfig(game)
		if err != nil {
			return cached{}, err
		}
		c.source = SourceDefault
	case err != nil:
		return cached{}, err
	}
	c.cfg = cfg

	m.configs[game] = c
	m.log.Debug().Str("game", string(game)).Str("source", c.source).Msg("config loaded")
	return c, nil
}

// LoadFile reads and validates the config file for game without touching
// the cache. It returns ErrConfigNotFound when the file does not exist.
func (m *Manager) LoadFile(game engine.GameID) (catalog.Config, error) {
	data, err := os.ReadFile(m.Path(game))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, Filename(game))
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := catalog.DecodeConfig(game, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Filename(game), err)
	}
	return cfg, nil
}

// ListConfigs returns the config in effect for every game. Games whose
// file fails to load are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	configs := make([]*service.ConfigInfo, 0, len(engine.AllGames))

	for _, game := range engine.AllGames {
		c, err := m.load(game)
		if err != nil {
			m.log.Warn().Err(err).Str("game", string(game)).Msg("skipping invalid config")
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Game:     game,
			Filename: Filename(game),
			Source:   c.source,
			Config:   c.cfg,
		})
	}

	return configs, nil
}

// RefreshCache drops all cached configurations so the next load reads disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = make(map[engine.GameID]cached)
}

// SaveConfig validates cfg and writes it as the file for game
func (m *Manager) SaveConfig(game engine.GameID, cfg catalog.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.Path(game), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[game] = cached{cfg: cfg, source: SourceFile}
	m.mu.Unlock()

	return nil
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
