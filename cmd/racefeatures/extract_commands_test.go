package main

import (
	"path/filepath"
	"strings"
	"testing"

	"racefeatures/internal/features"
	"racefeatures/internal/testsupport"
)

func TestFeaturesCommandWritesCSV(t *testing.T) {
	env := setupCLITestEnv(t, bahrainRoutes)

	out, stderr, err := runCLI(t, []string{"features"}, env.configPath)
	if err != nil {
		t.Fatalf("features: %v\nstderr: %s", err, stderr)
	}
	target := filepath.Join(env.cfg.Paths.OutputDir, "driver_features_2023_2023.csv")
	requireContains(t, out, "Wrote 2 driver rows to "+target)
	requireContains(t, out, "VER")

	lines := readLines(t, target)
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if lines[0] != strings.Join(features.DriverFeatureColumns, ",") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	requireContains(t, lines[1], "2023,Bahrain Grand Prix,VER,Red Bull,1,1,96.5")

	// the second event has no laps and is skipped, never failed
	requireContains(t, stderr, "skipped: no laps data")
}

func TestLapsCommandHonoursOutputFlag(t *testing.T) {
	env := setupCLITestEnv(t, bahrainRoutes)
	target := filepath.Join(t.TempDir(), "nested", "laps.csv")

	out, stderr, err := runCLI(t, []string{"laps", "--output", target}, env.configPath)
	if err != nil {
		t.Fatalf("laps: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, out, "Wrote 4 lap rows to "+target)

	lines := readLines(t, target)
	if len(lines) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d", len(lines))
	}
	if lines[0] != strings.Join(features.LapColumns, ",") {
		t.Fatalf("unexpected header %q", lines[0])
	}
}

func TestExtractionUsesResponseCache(t *testing.T) {
	env := setupCLITestEnv(t, bahrainRoutes)

	if _, stderr, err := runCLI(t, []string{"laps"}, env.configPath); err != nil {
		t.Fatalf("first run: %v\nstderr: %s", err, stderr)
	}
	if _, stderr, err := runCLI(t, []string{"features"}, env.configPath); err != nil {
		t.Fatalf("second run: %v\nstderr: %s", err, stderr)
	}
	if got := env.requests.count("/ergast/2023/1/laps.json"); got != 1 {
		t.Fatalf("expected laps to be fetched once, got %d", got)
	}
}

func TestExtractionWithoutDataWritesHeaders(t *testing.T) {
	routes := map[string]string{"/ergast/2023/races.json": bahrainRoutes["/ergast/2023/races.json"]}
	env := setupCLITestEnv(t, routes)

	out, stderr, err := runCLI(t, []string{"features"}, env.configPath)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	requireContains(t, out, "Wrote 0 driver rows")
	requireContains(t, stderr, "no data was extracted")

	lines := readLines(t, filepath.Join(env.cfg.Paths.OutputDir, "driver_features_2023_2023.csv"))
	if len(lines) != 1 {
		t.Fatalf("expected headers only, got %v", lines)
	}
}

func TestExtractionWritesJSONLogFile(t *testing.T) {
	env := setupCLITestEnv(t, bahrainRoutes, testsupport.WithLogDir())

	if _, stderr, err := runCLI(t, []string{"laps", "--log-level", "debug"}, env.configPath); err != nil {
		t.Fatalf("laps: %v\nstderr: %s", err, stderr)
	}
	logPath := filepath.Join(env.cfg.Paths.LogDir, "racefeatures.log")
	lines := readLines(t, logPath)
	joined := strings.Join(lines, "\n")
	requireContains(t, joined, `"msg":"run complete"`)
	requireContains(t, joined, `"run_id":`)
	requireContains(t, joined, `"msg":"fetched"`)
}

func TestExtractionRejectsInvertedSeasons(t *testing.T) {
	env := setupCLITestEnv(t, bahrainRoutes)

	_, _, err := runCLI(t, []string{"laps", "--from", "2024", "--to", "2023"}, env.configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "seasons.to must be >= seasons.from")
	if n := env.requests.total(); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}
