package version

// BestMatch returns the highest available version that satisfies every
// constraint in the set, or ("", false) when the constraint sets are
// disjoint over the available versions.
//
// Constraint intersection is evaluated against concrete candidates rather
// than symbolically: two constraints whose strings look incompatible can
// still agree on a published version (range overlap), and that is what
// matters for conflict resolution.
func BestMatch(provider string, constraints []*Constraint, available []string) (string, bool) {
	var best string
	found := false

	for _, candidate := range available {
		ok := true
		for _, c := range constraints {
			if !c.Satisfies(candidate) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if !found || Compare(provider, candidate, best) > 0 {
			best = candidate
			found = true
		}
	}

	return best, found
}

// Compatible reports whether the constraint sets intersect over the
// available versions.
func Compatible(provider string, constraints []*Constraint, available []string) bool {
	_, ok := BestMatch(provider, constraints, available)
	return ok
}
