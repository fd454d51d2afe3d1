package router

// MaxPoolsPerHop caps the pool alternatives retained per hop position when
// composing a route group. Five keeps the quote fan-out bounded without
// losing meaningful liquidity.
const MaxPoolsPerHop = 5

// ComposeRoutes groups enumerated paths by their token sequence and builds
// the multiplex route tree: per hop position the pools used across the
// group collapse into a capped Batch of DirectSwap leaves, hops chain into
// a MultiHop, and all groups wrap into one top-level Batch, the unit the
// orchestrator optimizes over. Returns nil for an empty path set.
func ComposeRoutes(paths []*Path) *Batch {
	if len(paths) == 0 {
		return nil
	}

	groupOrder := make([]string, 0, len(paths))
	groups := make(map[string][]*Path, len(paths))
	for _, p := range paths {
		key := p.RouteKey()
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], p)
	}

	tokenIn := paths[0].TokenIn
	routes := make([]Route, 0, len(groupOrder))
	for _, key := range groupOrder {
		routes = append(routes, composeGroup(groups[key]))
	}
	return NewBatch(tokenIn, routes)
}

// composeGroup collapses paths sharing one token sequence. A single-hop
// group is its hop Batch directly; longer groups chain hop Batches into a
// MultiHop along the shared token path.
func composeGroup(group []*Path) Route {
	tokenPath := group[0].TokenPath
	hopCount := len(tokenPath) - 1

	hops := make([]Route, 0, hopCount)
	for hop := 0; hop < hopCount; hop++ {
		seen := make(map[string]bool, len(group))
		leaves := make([]Route, 0, MaxPoolsPerHop)
		for _, p := range group {
			pool := p.Pools[hop]
			if seen[pool.ID] {
				continue
			}
			seen[pool.ID] = true
			leaves = append(leaves, NewDirectSwap(pool, tokenPath[hop], tokenPath[hop+1]))
			if len(leaves) == MaxPoolsPerHop {
				break
			}
		}
		hops = append(hops, NewBatch(tokenPath[hop], leaves))
	}

	if hopCount == 1 {
		return hops[0]
	}
	return NewMultiHop(hops, tokenPath)
}
