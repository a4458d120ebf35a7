// Package runlog provides run identifiers for CLI and benchmark output, so
// callers never need to import the uuid package directly.
package runlog

import "github.com/google/uuid"

// NewRunID returns a fresh, globally unique identifier suitable for tagging
// a benchmark run or checkpoint in logs and manifests.
func NewRunID() string {
	return uuid.New().String()
}
