package provider

import (
	"fmt"
	"strings"
)

// Spec is a parsed package identifier of the form
// "[provider:]name[@version]".
//
// Identity is (Provider, Name); Version is an optional pin. Provider may be
// empty in which case the registry's default provider applies.
type Spec struct {
	Provider string
	Name     string
	Version  string
}

// ParseSpec parses a package identifier string.
//
// Accepted forms: "name", "provider:name", "name@version",
// "provider:name@version". A leading "@" belongs to the name (npm scoped
// packages such as "@babel/core").
//
// Malformed identifiers return a *Error with CodeInvalidPackageSpec.
func ParseSpec(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, NewError(CodeInvalidPackageSpec, "", raw, "empty package identifier")
	}

	var spec Spec

	if i := strings.Index(s, ":"); i >= 0 {
		spec.Provider = s[:i]
		s = s[i+1:]
		if spec.Provider == "" {
			return Spec{}, NewError(CodeInvalidPackageSpec, "", raw, "empty provider prefix")
		}
		if !validToken(spec.Provider) {
			return Spec{}, NewError(CodeInvalidPackageSpec, "", raw,
				fmt.Sprintf("invalid provider prefix %q", spec.Provider))
		}
	}

	// Split name from version on the last "@" that is not the scoped-name
	// marker at position 0.
	if i := strings.LastIndex(s, "@"); i > 0 {
		spec.Name = s[:i]
		spec.Version = s[i+1:]
		if spec.Version == "" {
			return Spec{}, NewError(CodeInvalidPackageSpec, "", raw, "empty version after @")
		}
	} else {
		spec.Name = s
	}

	if spec.Name == "" {
		return Spec{}, NewError(CodeInvalidPackageSpec, "", raw, "empty package name")
	}
	if strings.ContainsAny(spec.Name, " \t") {
		return Spec{}, NewError(CodeInvalidPackageSpec, "", raw, "package name contains whitespace")
	}

	return spec, nil
}

// validToken reports whether s is a lowercase alphanumeric token usable as
// a provider id.
func validToken(s string) bool {
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

// Key returns the identity key "provider:name".
func (s Spec) Key() string {
	return s.Provider + ":" + s.Name
}

func (s Spec) String() string {
	out := s.Name
	if s.Provider != "" {
		out = s.Provider + ":" + out
	}
	if s.Version != "" {
		out += "@" + s.Version
	}
	return out
}
