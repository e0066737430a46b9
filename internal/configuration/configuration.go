package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mbarbosa/chatspace/internal/file"
)

var defaultConfig = Config{
	APIHost:         "https://api.openai.com/v1",
	RequestTimeout:  120,
	DatabasePath:    "~/.config/chatspace/chatspace.db",
	AvailableModels: []string{"gemini-2.5-flash"},
	DefaultModel:    "gemini-2.5-flash",
}

// Config holds configuration for the chatspace tool.
type Config struct {
	// Credential for the provider. Required: startup fails without it.
	APIKey  string `json:"api_key"`
	APIHost string `json:"api_host"`
	// Per-request timeout, in seconds.
	RequestTimeout int `json:"request_timeout"`
	// The sqlite file holding workspaces and preferences.
	DatabasePath string `json:"database_path"`
	// Models offered in the model picker.
	AvailableModels []string `json:"available_models"`
	// Model used for new chats before the user picks one.
	DefaultModel string `json:"default_model"`
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}

	if config.APIKey == "" {
		config.APIKey = os.Getenv("CHATSPACE_API_KEY")
	}
	if config.APIKey == "" {
		return nil, errors.Errorf("no api key set in %s or CHATSPACE_API_KEY", path)
	}
	if len(config.AvailableModels) == 0 {
		config.AvailableModels = defaultConfig.AvailableModels
	}
	if config.DefaultModel == "" {
		config.DefaultModel = config.AvailableModels[0]
	}

	expandedDatabasePath, err := file.ExpandPath(config.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.DatabasePath = expandedDatabasePath
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
