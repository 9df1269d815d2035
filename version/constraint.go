package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Constraint is a version requirement translated into the unified internal
// representation. When the source string cannot be translated the constraint
// degrades to exact string equality against the original text.
type Constraint struct {
	// Provider whose syntax the raw string was written in.
	Provider string

	// Raw is the constraint exactly as the provider reported it.
	Raw string

	set *semver.Constraints

	// exact is set when the raw string could not be translated; the
	// constraint then matches only the identical version string.
	exact string
}

// ParseConstraint translates an ecosystem-specific constraint string into a
// Constraint.
//
// Syntax per ecosystem:
//   - npm: Masterminds-native ranges (^, ~, ||, hyphen ranges, wildcards)
//   - pip: PEP 440 specifiers (==, >=, !=, ~=, trailing .*), comma-separated
//   - cargo: caret-by-default bare versions plus explicit ^ ~ ranges
//   - gem: pessimistic operator ~> plus plain comparison operators
//
// An empty string means "any version".
func ParseConstraint(provider, raw string) *Constraint {
	s := strings.TrimSpace(raw)
	if s == "" || s == "*" || s == "latest" {
		any, _ := semver.NewConstraint(">= 0.0.0-0")
		return &Constraint{Provider: provider, Raw: raw, set: any}
	}

	translated := translate(provider, s)
	set, err := semver.NewConstraint(translated)
	if err != nil {
		return &Constraint{Provider: provider, Raw: raw, exact: s}
	}
	return &Constraint{Provider: provider, Raw: raw, set: set}
}

// translate rewrites an ecosystem constraint into Masterminds syntax.
func translate(provider, s string) string {
	switch provider {
	case "pip":
		return translatePip(s)
	case "cargo":
		return translateCargo(s)
	case "gem":
		return translateGem(s)
	default:
		// npm ranges are Masterminds-native.
		return s
	}
}

func translatePip(s string) string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "==") && strings.HasSuffix(p, ".*"):
			// ==1.4.* is a wildcard match on the prefix.
			out = append(out, strings.TrimPrefix(p, "=="))
		case strings.HasPrefix(p, "=="):
			out = append(out, "="+strings.TrimPrefix(p, "=="))
		case strings.HasPrefix(p, "~="):
			v := strings.TrimSpace(strings.TrimPrefix(p, "~="))
			// Compatible release: the last stated component may vary, so
			// ~=1.4 allows any 1.x >= 1.4 while ~=1.4.5 allows only
			// 1.4.x >= 1.4.5.
			if strings.Count(v, ".") <= 1 {
				out = append(out, "^"+v)
			} else {
				out = append(out, "~"+v)
			}
		default:
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func translateCargo(s string) string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		// A bare version in cargo means caret.
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			p = "^" + p
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

func translateGem(s string) string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if rest, ok := strings.CutPrefix(p, "~>"); ok {
			v := strings.TrimSpace(rest)
			// Two segments allow a minor bump, three or more only a
			// patch bump.
			if strings.Count(v, ".") <= 1 {
				p = "^" + v
			} else {
				p = "~" + v
			}
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// Satisfies reports whether a raw version string meets the constraint.
func (c *Constraint) Satisfies(rawVersion string) bool {
	if c.exact != "" {
		return strings.TrimSpace(rawVersion) == c.exact
	}
	v, err := Parse(c.Provider, rawVersion)
	if err != nil {
		return false
	}
	return c.set.Check(v)
}

// Exact reports whether the constraint degraded to string equality.
func (c *Constraint) Exact() bool { return c.exact != "" }

func (c *Constraint) String() string {
	if c.Raw == "" {
		return "*"
	}
	return c.Raw
}

// ExactVersion returns a constraint that matches exactly one version.
// Used when a package id carries a pinned "name@version"; the pin never
// goes through ecosystem range expansion.
func ExactVersion(provider, v string) *Constraint {
	c := ParseConstraint(provider, fmt.Sprintf("=%s", v))
	if c.exact != "" {
		// Unparsable pins match the pinned string itself.
		c.exact = strings.TrimSpace(v)
	}
	return c
}
