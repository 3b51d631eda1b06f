package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"racefeatures/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("RACEFEATURES_CACHE_DIR", "")
	t.Setenv("ERGAST_BASE_URL", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(tempHome, ".cache", "racefeatures")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Seasons.From != 2018 || cfg.Seasons.To != 2024 {
		t.Fatalf("unexpected season range: %+v", cfg.Seasons)
	}
	if cfg.Provider.ErgastBaseURL != "https://api.jolpi.ca/ergast/f1" {
		t.Fatalf("unexpected ergast url: %q", cfg.Provider.ErgastBaseURL)
	}
	if cfg.EventDelay() != 3*time.Second {
		t.Fatalf("unexpected event delay: %v", cfg.EventDelay())
	}
	if cfg.Batch.SessionType != "R" {
		t.Fatalf("unexpected session type: %q", cfg.Batch.SessionType)
	}
	if got := filepath.Base(cfg.FeaturesOutputPath()); got != "driver_features_2018_2024.csv" {
		t.Fatalf("unexpected features file: %q", got)
	}
	if got := filepath.Base(cfg.LapsOutputPath()); got != "lap_level_data_2018_2024.csv" {
		t.Fatalf("unexpected laps file: %q", got)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "racefeatures.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
			CacheDir  string `toml:"cache_dir"`
		} `toml:"paths"`
		Seasons struct {
			From int `toml:"from"`
			To   int `toml:"to"`
		} `toml:"seasons"`
		Provider struct {
			ErgastBaseURL string `toml:"ergast_base_url"`
		} `toml:"provider"`
		Batch struct {
			EventDelaySeconds int `toml:"event_delay_seconds"`
		} `toml:"batch"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Paths.CacheDir = filepath.Join(tempDir, "cache")
	custom.Seasons.From = 2021
	custom.Seasons.To = 2022
	custom.Provider.ErgastBaseURL = "https://example.com/ergast/f1/"
	custom.Batch.EventDelaySeconds = 0
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Provider.ErgastBaseURL != "https://example.com/ergast/f1" {
		t.Fatalf("expected trimmed ergast url override, got %q", cfg.Provider.ErgastBaseURL)
	}
	if cfg.EventDelay() != 0 {
		t.Fatalf("expected zero delay, got %v", cfg.EventDelay())
	}
	want := filepath.Join(tempDir, "out", "driver_features_2021_2022.csv")
	if cfg.FeaturesOutputPath() != want {
		t.Fatalf("unexpected features path: got %q want %q", cfg.FeaturesOutputPath(), want)
	}
}

func TestEnvFallbacks(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "env-cache")
	t.Setenv("RACEFEATURES_CACHE_DIR", cacheDir)
	t.Setenv("ERGAST_BASE_URL", "https://mirror.example.com/f1")

	configPath := filepath.Join(t.TempDir(), "racefeatures.toml")
	contents := "[paths]\ncache_dir = \"\"\n[provider]\nergast_base_url = \"\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CacheDir != cacheDir {
		t.Errorf("expected cache dir from env, got %q", cfg.Paths.CacheDir)
	}
	if cfg.Provider.ErgastBaseURL != "https://mirror.example.com/f1" {
		t.Errorf("expected ergast url from env, got %q", cfg.Provider.ErgastBaseURL)
	}
}

func TestEnvOverridesDefaultsButNotFile(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "env-cache")
	t.Setenv("RACEFEATURES_CACHE_DIR", cacheDir)
	t.Setenv("ERGAST_BASE_URL", "https://mirror.example.com/f1")

	configPath := filepath.Join(t.TempDir(), "racefeatures.toml")
	contents := "[provider]\nergast_base_url = \"https://file.example.com/f1\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CacheDir != cacheDir {
		t.Errorf("expected cache dir from env, got %q", cfg.Paths.CacheDir)
	}
	if cfg.Provider.ErgastBaseURL != "https://file.example.com/f1" {
		t.Errorf("expected ergast url from file, got %q", cfg.Provider.ErgastBaseURL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "api.jolpi.ca") {
		t.Fatalf("sample config missing jolpica url: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Seasons.From != 2018 || cfg.Seasons.To != 2024 {
		t.Fatalf("unexpected sample seasons: %+v", cfg.Seasons)
	}
	if cfg.Batch.EventDelaySeconds != 3 {
		t.Fatalf("unexpected sample delay: %d", cfg.Batch.EventDelaySeconds)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Seasons.From = 2017
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for season before 2018")
	}

	cfg = config.Default()
	cfg.Seasons.To = cfg.Seasons.From - 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted season range")
	}

	cfg = config.Default()
	cfg.Provider.ErgastBaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative ergast url")
	}

	cfg = config.Default()
	cfg.Provider.RequestTimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}

	cfg = config.Default()
	cfg.Batch.EventDelaySeconds = -3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative event delay")
	}

	cfg = config.Default()
	cfg.Batch.SessionType = "Q"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-race session type")
	}

	cfg = config.Default()
	cfg.Paths.CacheDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when cache dir missing with cache enabled")
	}
	cfg.Provider.DisableCache = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled cache to allow empty dir: %v", err)
	}
}

func TestLoadRejectsUnknownSessionType(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "racefeatures.toml")
	if err := os.WriteFile(configPath, []byte("[batch]\nsession_type = \"warmup\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unsupported session type")
	}
}
