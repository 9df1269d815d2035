package resolver

import "sort"

// planOrder computes the install order over the graph collapsed to unique
// (provider, name) nodes: Kahn's algorithm with dependencies preceding
// dependents and alphabetical tie-breaking for stable output.
//
// Cycles are broken during the walk, so the collapsed graph should always
// be acyclic; the re-check here is defensive and reports ok=false if a
// cycle slipped through.
func planOrder(flat []*DependencyNode, winners map[string]winner) (order []string, ok bool) {
	// dependents[dep] lists the keys that depend on dep; indegree counts
	// each node's unresolved dependencies.
	dependents := make(map[string][]string)
	indegree := make(map[string]int)
	edgeSeen := make(map[string]bool)

	for key := range winners {
		indegree[key] = 0
	}

	for _, node := range flat {
		if node.Version == "" {
			continue
		}
		parent := node.key()
		if _, ok := winners[parent]; !ok {
			continue
		}
		for _, child := range node.Dependencies {
			dep := child.key()
			if dep == parent {
				continue
			}
			if _, ok := winners[dep]; !ok {
				continue
			}
			edge := dep + ">" + parent
			if edgeSeen[edge] {
				continue
			}
			edgeSeen[edge] = true
			dependents[dep] = append(dependents[dep], parent)
			indegree[parent]++
		}
	}

	// ready holds zero-indegree keys sorted by package name so each round
	// pops alphabetically.
	var ready []string
	for key, deg := range indegree {
		if deg == 0 {
			ready = append(ready, key)
		}
	}
	byName := func(i, j int) bool {
		a, b := winners[ready[i]], winners[ready[j]]
		if a.name != b.name {
			return a.name < b.name
		}
		return a.provider < b.provider
	}
	sort.Slice(ready, byName)

	order = make([]string, 0, len(winners))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		order = append(order, winners[key].name)

		for _, dependent := range dependents[key] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Slice(ready, byName)
	}

	return order, len(order) == len(winners)
}
