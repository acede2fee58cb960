package item

import (
	"fmt"
	"strings"
)

// Platform is an operating system a game can run on.
type Platform string

// Supported platforms.
const (
	Windows Platform = "windows"
	Mac     Platform = "mac"
	Linux   Platform = "linux"
)

// Platforms lists every supported platform in a stable order.
var Platforms = []Platform{Windows, Mac, Linux}

// IsValid checks if the platform is one of the supported values.
func (p Platform) IsValid() bool {
	return p == Windows || p == Mac || p == Linux
}

// ParsePlatform converts a case-insensitive name into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// PlatformSet is a set of platform support flags.
type PlatformSet struct {
	Windows bool
	Mac     bool
	Linux   bool
}

// Has reports whether p is set.
func (s PlatformSet) Has(p Platform) bool {
	switch p {
	case Windows:
		return s.Windows
	case Mac:
		return s.Mac
	case Linux:
		return s.Linux
	default:
		return false
	}
}
