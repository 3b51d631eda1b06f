package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"racefeatures/internal/config"
	"racefeatures/internal/testsupport"
)

var bahrainRoutes = map[string]string{
	"/ergast/2023/races.json": `{"MRData":{"limit":"100","offset":"0","total":"2","RaceTable":{"Races":[
		{"season":"2023","round":"1","raceName":"Bahrain Grand Prix","date":"2023-03-05"},
		{"season":"2023","round":"2","raceName":"Saudi Arabian Grand Prix","date":"2023-03-19"}
	]}}}`,
	"/ergast/2023/1/results.json": `{"MRData":{"limit":"100","offset":"0","total":"2","RaceTable":{"Races":[{"Results":[
		{"number":"1","position":"1","grid":"1","status":"Finished","Driver":{"driverId":"max_verstappen","code":"VER","givenName":"Max","familyName":"Verstappen"},"Constructor":{"name":"Red Bull"}},
		{"number":"16","position":"2","grid":"2","status":"Finished","Driver":{"driverId":"leclerc","code":"LEC","givenName":"Charles","familyName":"Leclerc"},"Constructor":{"name":"Ferrari"}}
	]}]}}}`,
	"/ergast/2023/1/laps.json": `{"MRData":{"limit":"100","offset":"0","total":"4","RaceTable":{"Races":[{"Laps":[
		{"number":"1","Timings":[{"driverId":"max_verstappen","position":"1","time":"1:37.000"},{"driverId":"leclerc","position":"2","time":"1:38.000"}]},
		{"number":"2","Timings":[{"driverId":"max_verstappen","position":"1","time":"1:36.000"},{"driverId":"leclerc","position":"2","time":"1:39.000"}]}
	]}]}}}`,
	"/ergast/2023/2/results.json": `{"MRData":{"limit":"100","offset":"0","total":"0","RaceTable":{"Races":[]}}}`,
	"/ergast/2023/2/laps.json":    `{"MRData":{"limit":"100","offset":"0","total":"0","RaceTable":{"Races":[]}}}`,
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	requests   *requestLog
}

type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *requestLog) add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

func (l *requestLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.paths)
}

func (l *requestLog) count(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.paths {
		if p == path {
			n++
		}
	}
	return n
}

func setupCLITestEnv(t *testing.T, routes map[string]string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	opts = append([]testsupport.ConfigOption{testsupport.WithSeasons(2023, 2023), testsupport.WithServer(srv.URL)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, requests: log}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
