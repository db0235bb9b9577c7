package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/service"
)

// Errors are shared with the service layer so callers can match them
// without importing this package.
var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// rosterExtensions lists the file types read from the roster directory, in
// lookup order
var rosterExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles roster loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
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

// LoadConfig loads a roster by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = trimRosterExt(name)

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	path, err := m.findRosterFile(name)
	if err != nil {
		return nil, err
	}

	config, err := ReadRosterFile(path)
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

// ReadRosterFile decodes and validates a JSON or YAML roster file
func ReadRosterFile(path string) (*engine.GameConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	engine.ApplyDefaults(&config)

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// ListConfigs returns information about all loadable rosters
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !IsRosterFile(entry.Name()) {
			continue
		}

		name := trimRosterExt(entry.Name())
		if seen[name] {
			continue
		}

		config, err := m.LoadConfig(name)
		if err != nil {
			zap.L().Debug("skipping roster", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		seen[name] = true

		spirits, villagers := engine.CountTeams(config.Roles)
		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Capacity:    config.Capacity,
			Spirits:     spirits,
			Villagers:   villagers,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default roster
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default roster by name
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

// RefreshCache drops cached rosters and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig("classic")
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(engine.DefaultGameConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(engine.DefaultGameConfig())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(config *engine.GameConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
}

// SaveConfig validates a roster and writes it to disk as indented JSON
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name = trimRosterExt(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid roster name %q", ErrInvalidConfig, name)
	}

	engine.ApplyDefaults(config)
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

func (m *Manager) findRosterFile(name string) (string, error) {
	for _, ext := range rosterExtensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// IsRosterFile reports whether a file name has a roster extension
func IsRosterFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range rosterExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func trimRosterExt(name string) string {
	if IsRosterFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
