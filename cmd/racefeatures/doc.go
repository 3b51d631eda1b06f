// Package main hosts the racefeatures CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger and provider client, and hands off to the batch driver. Extraction
// logic lives in the internal packages; commands here only translate flags
// into configuration and print results.
package main
