// Package id generates run identifiers.
package id

import "github.com/google/uuid"

// New returns a new unique run identifier.
func New() string {
	return uuid.New().String()
}

// Short returns the compact prefix form of an identifier used in console
// output and lookups.
func Short(runID string) string {
	if len(runID) <= 8 {
		return runID
	}
	return runID[:8]
}
