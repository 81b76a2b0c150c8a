// Package cli constructs the gitlab-compare command-line interface, wiring
// the Cobra command hierarchy, configuration loader, and structured logging
// primitives.
package cli
