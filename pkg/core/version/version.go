// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and services
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for all calcscript components
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Engine     = "1.0.0"
	Runner     = "1.0.0"
	Playground = "1.0.0"
	Console    = "1.0.0"
	History    = "1.0.0"
)

// Set at build time with -ldflags "-X .../version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "runner":
		return Runner
	case "playground":
		return Playground
	case "console":
		return Console
	case "history":
		return History
	default:
		return Platform
	}
}

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary
func Get() Info {
	return Info{
		Version:   Platform,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String formats the build information on one line
func (i Info) String() string {
	return fmt.Sprintf("calcscript %s (commit %s, built %s, %s %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
