// Package gitlab implements the paginated project listing client for a single
// GitLab instance: the page fetcher with retry and backoff, the sequential
// collector that drains every page, and the normalizer that maps raw API
// payloads into canonical project records.
package gitlab
