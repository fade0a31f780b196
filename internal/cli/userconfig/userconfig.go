package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newsox/newsox/internal/models"
)

const (
	configDirName  = "newsox"
	configFileName = "config.json"
)

// UserConfig represents the user's local state stored in ~/.config/newsox/config.json
type UserConfig struct {
	SelectedServer string `json:"selected_server"`
	// Users holds the last known member per server URL, shown before the
	// backend has confirmed the session
	Users map[string]*models.User `json:"users,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	// Member details live here, so keep the file private
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedServer updates the selected server URL and saves the config
func SetSelectedServer(serverURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedServer = serverURL
	return Save(cfg)
}

// GetSelectedServer returns the selected server URL, or empty string if not set
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedServer, nil
}

// Snapshots stores the last known member of one server in the user config.
// It satisfies the session's snapshot store.
type Snapshots struct {
	server string
}

// SnapshotStore returns the snapshot store for serverURL
func SnapshotStore(serverURL string) *Snapshots {
	return &Snapshots{server: serverURL}
}

// SaveUser replaces the stored member for the server
func (s *Snapshots) SaveUser(user *models.User) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	if cfg.Users == nil {
		cfg.Users = make(map[string]*models.User)
	}
	cfg.Users[s.server] = user
	return Save(cfg)
}

// LoadUser returns the stored member for the server, or nil
func (s *Snapshots) LoadUser() (*models.User, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return cfg.Users[s.server], nil
}

// DeleteUser forgets the stored member for the server
func (s *Snapshots) DeleteUser() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	if _, ok := cfg.Users[s.server]; !ok {
		return nil
	}
	delete(cfg.Users, s.server)
	return Save(cfg)
}
