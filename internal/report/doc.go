// Package report writes extracted rows to CSV and renders console previews.
package report
