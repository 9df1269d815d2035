// Package version provides version parsing and constraint handling across
// package-manager ecosystems.
//
// Every ecosystem's version string is normalized to a semantic version and
// every constraint is translated into a single internal representation
// (Masterminds constraints), so the resolver can compare requirements coming
// from different providers with one set of rules.
//
// Example:
//
//	v, err := version.Parse("npm", "v1.2.3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v.Major(), v.Minor(), v.Patch()) // 1 2 3
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrUnparsable is the sentinel wrapped by parse failures. Callers that see
// it degrade to string-equality comparison instead of failing the resolve.
type UnparsableError struct {
	Provider string
	Raw      string
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("unparsable version %q (provider %s)", e.Raw, e.Provider)
}

// Parse normalizes a provider-specific version string and parses it as a
// semantic version.
//
// Returns *UnparsableError when the string cannot be coerced into a
// comparable form.
func Parse(provider, raw string) (*semver.Version, error) {
	s := Normalize(provider, raw)
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, &UnparsableError{Provider: provider, Raw: raw}
	}
	return v, nil
}

// Normalize converts a provider-specific version string to canonical
// semantic-version form. It never fails; strings it cannot improve are
// returned trimmed as-is.
func Normalize(provider, raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "v")
	s = strings.TrimPrefix(s, "V")

	switch provider {
	case "pip":
		// PEP 440 epoch ("1!2.0") and local version ("+local") segments
		// have no semver equivalent. Strip them for comparison.
		if i := strings.Index(s, "!"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.Index(s, "+"); i >= 0 {
			s = s[:i]
		}
		// Post/dev releases compare close enough as prerelease labels.
		s = strings.ReplaceAll(s, ".post", "-post.")
		s = strings.ReplaceAll(s, ".dev", "-dev.")
	case "gem":
		// RubyGems prerelease separator is a plain dot: "1.0.0.rc1".
		if i := firstAlphaSegment(s); i > 0 {
			s = s[:i-1] + "-" + s[i:]
		}
	}

	return s
}

// firstAlphaSegment returns the index of the first dot-separated segment that
// starts with a letter, or -1. Used to split "1.0.0.rc1" into version and
// prerelease parts.
func firstAlphaSegment(s string) int {
	for i, seg := range strings.Split(s, ".") {
		if seg == "" {
			continue
		}
		c := seg[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			// Offset of this segment within s.
			offset := 0
			for _, prev := range strings.Split(s, ".")[:i] {
				offset += len(prev) + 1
			}
			return offset
		}
	}
	return -1
}

// Compare compares two raw version strings under a provider's normalization
// rules. Unparsable versions fall back to string comparison.
func Compare(provider, a, b string) int {
	va, errA := Parse(provider, a)
	vb, errB := Parse(provider, b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
