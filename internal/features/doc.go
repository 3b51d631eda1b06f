// Package features flattens loaded race sessions into tabular rows: one
// driver-feature row per driver per race, and one row per lap.
package features
