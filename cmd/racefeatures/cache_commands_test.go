package main

import "testing"

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t, bahrainRoutes)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 0")

	if _, stderr, err := runCLI(t, []string{"laps"}, env.configPath); err != nil {
		t.Fatalf("laps: %v\nstderr: %s", err, stderr)
	}

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	// races plus results and laps for both rounds; 404s are never cached
	requireContains(t, out, "Entries: 5")
	requireContains(t, out, "Newest:")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 5 cached responses")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cache already empty")
}
