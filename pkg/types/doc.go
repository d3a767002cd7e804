// Package types defines the shared value types of the clipboard engine:
// item kinds, stored and new items, content fingerprints for deduplication,
// dedupe-insert outcomes, and the error taxonomy used across all layers.
package types
