// Package util provides utility functions for the application.
package util

import (
	"fmt"
	"io"
)

// na returns "N/A" if the input string is empty, otherwise it returns the input string.
func na(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// BuildInfo is stamped into the binary with -ldflags.
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// VersionOr returns the stamped version, or def for unstamped builds.
func (b BuildInfo) VersionOr(def string) string {
	if b.Version == "" {
		return def
	}
	return b.Version
}

// Print writes the build version, date and commit, one per line.
func (b BuildInfo) Print(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", na(b.Version))
	fmt.Fprintf(w, "Build date: %s\n", na(b.Date))
	fmt.Fprintf(w, "Build commit: %s\n", na(b.Commit))
}
