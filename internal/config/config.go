package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const DefaultHotkey = "ctrl+alt+space"

type Profile struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model"`
}

// Settings are process-level knobs read once at startup from the
// environment. They are not part of the profile file.
type Settings struct {
	Hotkey     string // QUICKPANE_HOTKEY, e.g. "ctrl+alt+space"
	Debug      bool   // QUICKPANE_DEBUG: verbose program notices
	NoStream   bool   // QUICKPANE_NO_STREAM: single blocking completion per request
	ShowSystem bool   // initial visibility of system/program notices
}

type Config struct {
	Profiles      map[string]Profile `json:"profiles"`
	ActiveProfile string             `json:"active_profile"`

	settings       Settings
	currentProfile *Profile
	mu             sync.RWMutex
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Load existing config or create default
	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate and set current profile
	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	config.applyEnvOverrides()
	config.settings = loadSettings()

	return config, nil
}

// applyEnvOverrides lets the environment fill in or replace profile values,
// matching how the app is commonly launched (key in the environment or a
// .env file, no profile configured at all).
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.currentProfile.APIKey == "" {
		c.currentProfile.APIKey = key
	}
	if base := os.Getenv("OPENAI_API_BASE"); base != "" && c.currentProfile.BaseURL == "" {
		c.currentProfile.BaseURL = base
	}
	if model := os.Getenv("MODEL"); model != "" {
		c.currentProfile.Model = model
	}
}

func loadSettings() Settings {
	hotkey := os.Getenv("QUICKPANE_HOTKEY")
	if hotkey == "" {
		hotkey = DefaultHotkey
	}
	return Settings{
		Hotkey:     hotkey,
		Debug:      boolEnv("QUICKPANE_DEBUG"),
		NoStream:   boolEnv("QUICKPANE_NO_STREAM"),
		ShowSystem: true,
	}
}

func boolEnv(name string) bool {
	switch os.Getenv(name) {
	case "1", "true", "True", "yes":
		return true
	}
	return false
}

func (c *Config) Settings() Settings {
	return c.settings
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.APIKey != ""
}

func (c *Config) GetAPIKey() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIKey
}

func (c *Config) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.currentProfile == nil || c.currentProfile.Model == "" {
		return "gpt-4o-mini"
	}
	return c.currentProfile.Model
}

// SetModel updates the selected model at runtime. It takes effect on the
// next request; a following Save makes it stick across restarts.
func (c *Config) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentProfile == nil || model == "" {
		return
	}
	c.currentProfile.Model = model
	// currentProfile is a copy of the map entry; write the change back so
	// Save marshals it.
	if profile, exists := c.Profiles[c.ActiveProfile]; exists {
		profile.Model = model
		c.Profiles[c.ActiveProfile] = profile
	}
}

func (c *Config) GetBaseURL() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.BaseURL
}

func getConfigPath() (string, error) {
	var configDir string

	// Use QUICKPANE_HOME if set, otherwise use user's home directory
	if paneHome := os.Getenv("QUICKPANE_HOME"); paneHome != "" {
		configDir = paneHome
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".quickpane", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	// Read existing config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": {
				APIKey:  "",
				BaseURL: "",
				Model:   "gpt-4o-mini",
			},
		},
		ActiveProfile: "default",
	}

	// Save default config to file
	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// If active profile doesn't exist, try to use the first available profile
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}

	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}
