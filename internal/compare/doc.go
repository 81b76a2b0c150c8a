// Package compare computes the deterministic comparison between the project
// lists of two GitLab instances and orchestrates collection, comparison, and
// report artifact writing for a single run.
package compare
