// Package services defines shared utilities consumed by the provider clients,
// the batch driver, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, seasons, and event names for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified in logs and tests without changing control flow.
//
// Use these helpers when wiring new provider or job code so error messages and
// log fields stay uniform across the run.
package services
