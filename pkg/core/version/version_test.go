package version

import (
	"regexp"
	"runtime"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Platform", Platform},
		{"Engine", Engine},
		{"Runner", Runner},
		{"Playground", Playground},
		{"Console", Console},
		{"History", History},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestServiceVersion(t *testing.T) {
	tests := []struct {
		service  string
		expected string
	}{
		{"engine", Engine},
		{"runner", Runner},
		{"playground", Playground},
		{"console", Console},
		{"history", History},
		{"unknown", Platform},
		{"", Platform},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			if result := ServiceVersion(tt.service); result != tt.expected {
				t.Errorf("ServiceVersion(%q) = %q, want %q", tt.service, result, tt.expected)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Platform {
		t.Errorf("Version = %q, want %q", info.Version, Platform)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.HasPrefix(info.String(), "calcscript "+Platform) {
		t.Errorf("String() = %q", info.String())
	}
}
