// Package config loads, normalizes, and validates racefeatures configuration.
//
// It supplies repository defaults (season range 2018-2024, the Jolpica Ergast
// mirror, the live-timing archive, a three second pause between events),
// expands user paths including tilde shortcuts, reads TOML files, and honours
// environment fallbacks such as RACEFEATURES_CACHE_DIR and ERGAST_BASE_URL.
//
// Always obtain settings through this package so the batch jobs receive
// sanitized paths and clear validation errors.
package config
