// Package report serializes comparison results into JSON and CSV artifacts,
// either as one combined report or as split per-instance and common files,
// and persists fully built artifacts atomically.
package report
