// Package race defines the domain model shared by the provider clients, the
// record flatteners, and the batch driver.
//
// Types here describe one loaded race session as plain Go values: the event it
// belongs to, its laps, classified results, weather samples, and an explicit
// optional pit-stop table. Nothing in this package performs I/O.
package race
