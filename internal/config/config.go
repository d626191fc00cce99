package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"apexrun/internal/session"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava"`
	Athlete AthleteConfig `json:"athlete"`
	Display DisplayConfig `json:"display"`
	Server  ServerConfig  `json:"server"`
	Import  ImportConfig  `json:"import"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AthleteConfig holds athlete-specific settings. Zero means unknown.
type AthleteConfig struct {
	RestingHR float64 `json:"resting_hr"`
	MaxHR     float64 `json:"max_hr"`
	Age       int     `json:"age"`
	Gender    string  `json:"gender"` // "male" or "female"
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PaceUnit     string `json:"pace_unit"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `json:"addr"`
}

// ImportConfig configures file import
type ImportConfig struct {
	WatchDir string `json:"watch_dir"` // default directory for `apexrun watch`
	Workers  int    `json:"workers"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			RestingHR: session.DefaultRestingHR,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		Import: ImportConfig{
			Workers: 4,
		},
	}
}

// Load reads the configuration from ~/.apexrun/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadPath(path)
}

// LoadPath reads the configuration at path and fills in defaults
func LoadPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero values. Max HR stays unset so it can be
// estimated from age or observed data.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Athlete.RestingHR == 0 {
		c.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if c.Display.DistanceUnit == "" {
		c.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if c.Display.PaceUnit == "" {
		c.Display.PaceUnit = defaults.Display.PaceUnit
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Import.Workers <= 0 {
		c.Import.Workers = defaults.Import.Workers
	}
	c.Athlete.Gender = strings.ToLower(strings.TrimSpace(c.Athlete.Gender))
}

// Save writes the configuration to ~/.apexrun/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SavePath(cfg, path)
}

// SavePath writes the configuration to path
func SavePath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	example.Athlete.Age = 35
	example.Athlete.Gender = string(session.Male)
	return Save(&example)
}

// Validate checks the settings every command relies on
func (c *Config) Validate() error {
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	a := c.Athlete
	if a.Gender != "" && a.Gender != string(session.Male) && a.Gender != string(session.Female) {
		return fmt.Errorf("athlete.gender must be \"male\" or \"female\", got %q", a.Gender)
	}
	if a.Age < 0 || a.Age > 120 {
		return fmt.Errorf("athlete.age must be between 0 and 120, got %d", a.Age)
	}
	if a.RestingHR < 0 || a.MaxHR < 0 {
		return errors.New("athlete heart rates must not be negative")
	}
	if a.MaxHR > 0 && a.RestingHR >= a.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", a.RestingHR, a.MaxHR)
	}
	return nil
}

// ValidateStrava checks the credentials needed to sync
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// AthleteProfile converts the athlete settings for analysis
func (c *Config) AthleteProfile() session.Athlete {
	return session.Athlete{
		MaxHR:     c.Athlete.MaxHR,
		RestingHR: c.Athlete.RestingHR,
		Age:       c.Athlete.Age,
		Gender:    session.Gender(c.Athlete.Gender),
	}
}

// Miles reports whether distances are shown in miles
func (c *Config) Miles() bool {
	return c.Display.DistanceUnit == "mi"
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".apexrun"), nil
}
