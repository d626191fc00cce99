package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apexrun/internal/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 0 {
		t.Errorf("Athlete.MaxHR = %v, want unset", cfg.Athlete.MaxHR)
	}
	if cfg.Display.DistanceUnit != "km" || cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display = %+v, want km and min/km", cfg.Display)
	}
	if cfg.Server.Addr == "" || cfg.Import.Workers != 4 {
		t.Errorf("Server/Import = %+v / %+v", cfg.Server, cfg.Import)
	}

	// Strava config should be empty by default
	if cfg.Strava.ClientID != "" || cfg.Strava.ClientSecret != "" {
		t.Errorf("Strava = %+v, want empty", cfg.Strava)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		athlete     AthleteConfig
		display     DisplayConfig
		errContains string
	}{
		{name: "empty config is valid"},
		{name: "full athlete", athlete: AthleteConfig{RestingHR: 48, MaxHR: 188, Age: 41, Gender: "female"}},
		{name: "miles", display: DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"}},
		{name: "bad distance unit", display: DisplayConfig{DistanceUnit: "furlong"}, errContains: "distance_unit"},
		{name: "bad pace unit", display: DisplayConfig{PaceUnit: "s/m"}, errContains: "pace_unit"},
		{name: "bad gender", athlete: AthleteConfig{Gender: "x"}, errContains: "gender"},
		{name: "bad age", athlete: AthleteConfig{Age: 200}, errContains: "age"},
		{name: "negative HR", athlete: AthleteConfig{RestingHR: -1}, errContains: "negative"},
		{name: "resting above max", athlete: AthleteConfig{RestingHR: 190, MaxHR: 180}, errContains: "resting_hr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Athlete: tt.athlete, Display: tt.display}
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Error("expected error, got nil")
			} else if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestValidateStrava(t *testing.T) {
	tests := []struct {
		name        string
		strava      StravaConfig
		errContains string
	}{
		{"valid", StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"}, ""},
		{"empty client ID", StravaConfig{ClientSecret: "abc123secret"}, "client_id"},
		{"placeholder client ID", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc"}, "client_id"},
		{"empty client secret", StravaConfig{ClientID: "12345"}, "client_secret"},
		{"both placeholders", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Strava: tt.strava}
			err := cfg.ValidateStrava()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %v, want it to mention %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadPathMissing(t *testing.T) {
	_, err := LoadPath(filepath.Join(t.TempDir(), "config.json"))
	if err != ErrNoConfig {
		t.Errorf("LoadPath() error = %v, want ErrNoConfig", err)
	}
}

func TestLoadPathAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"athlete": {"age": 52, "gender": " Female "}, "display": {"distance_unit": "mi"}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if cfg.Athlete.RestingHR != 50 || cfg.Display.PaceUnit != "min/km" || cfg.Import.Workers != 4 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !cfg.Miles() {
		t.Error("Miles() = false for distance_unit mi")
	}

	got := cfg.AthleteProfile()
	want := session.Athlete{RestingHR: 50, Age: 52, Gender: session.Female}
	if got != want {
		t.Errorf("AthleteProfile() = %+v, want %+v", got, want)
	}
}

func TestLoadPathInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPath(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("LoadPath() error = %v, want parse error", err)
	}
}

func TestSavePathRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Strava.ClientID = "id"
	cfg.Import.WatchDir = "/data/runs"

	if err := SavePath(&cfg, path); err != nil {
		t.Fatalf("SavePath() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != cfg {
		t.Errorf("round trip = %+v, want %+v", *got, cfg)
	}
}
