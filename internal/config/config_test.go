package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig error = %v", err)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("default Volume = %v, want 0.5", cfg.Volume)
	}
	if cfg.EqualizerEnabled {
		t.Error("equalizer enabled by default")
	}
	for i, g := range cfg.EqualizerGains {
		if g != 0 {
			t.Errorf("default gain[%d] = %v, want 0", i, g)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := GetDefaultConfig()
	cfg.Volume = 0.8
	cfg.EqualizerEnabled = true
	cfg.EqualizerGains[0] = 6
	cfg.EqualizerGains[9] = -3

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig error = %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error = %v", err)
	}
	if got.Volume != 0.8 || !got.EqualizerEnabled {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.EqualizerGains != cfg.EqualizerGains {
		t.Errorf("gains = %v, want %v", got.EqualizerGains, cfg.EqualizerGains)
	}
}

func TestLoadConfig_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig accepted corrupt JSON")
	}
}

func TestLoadConfig_SanitizesOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{"volume": 3.5, "equalizer_gains": [99, -99, 0, 0, 0, 0, 0, 0, 0, 0]}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error = %v", err)
	}
	if cfg.Volume != 1.0 {
		t.Errorf("Volume = %v, want clamp to 1.0", cfg.Volume)
	}
	if cfg.EqualizerGains[0] != 12 {
		t.Errorf("gain[0] = %v, want clamp to 12", cfg.EqualizerGains[0])
	}
	if cfg.EqualizerGains[1] != -12 {
		t.Errorf("gain[1] = %v, want clamp to -12", cfg.EqualizerGains[1])
	}
}

func TestLoadOrCreate_WritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate error = %v", err)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Volume = %v, want default 0.5", cfg.Volume)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("ONEAMP_CONFIG", "/tmp/custom.json")
	if got := GetConfigPath(); got != "/tmp/custom.json" {
		t.Errorf("GetConfigPath() = %q, want env override", got)
	}

	t.Setenv("ONEAMP_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	want := filepath.Join("/tmp/xdg", "oneamp", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}
