package router

import (
	"strings"

	"github.com/swapforge/route-engine/internal/domain"
)

// Path is a simple pool chain from TokenIn to TokenOut: Pools[0] touches
// TokenIn, Pools[last] touches TokenOut, consecutive pools share the
// linking token recorded in TokenPath. A pool appears at most once per
// path, and so does a token: revisiting an earlier token can only add a
// round trip through extra fees, so the enumerator refuses it.
type Path struct {
	Pools     []*domain.Pool
	TokenIn   domain.Asset
	TokenOut  domain.Asset
	TokenPath []domain.Asset
}

// RouteKey joins the token sequence's addresses; paths sharing a key have
// identical hops and are composed together.
func (p *Path) RouteKey() string {
	var sb strings.Builder
	for i, t := range p.TokenPath {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(strings.ToLower(t.Address.Hex()))
	}
	return sb.String()
}

// EnumeratePaths runs a depth-first search over the candidate pools and
// returns every simple pool chain of length 1..maxHops connecting tokenIn
// to tokenOut, in discovery order. Discovery order is deterministic for a
// given candidate list, which downstream sorting relies on.
func EnumeratePaths(tokenIn, tokenOut domain.Asset, pools []*domain.Pool, maxHops int) []*Path {
	if maxHops < 1 {
		return nil
	}

	e := &enumerator{
		tokenOut: tokenOut,
		pools:    pools,
		maxHops:  maxHops,
		usedPool: make(map[string]bool, len(pools)),
		onPath:   make(map[chainAddr]bool, maxHops+1),
	}
	e.onPath[assetKey(tokenIn)] = true
	e.dfs(tokenIn, tokenOut, nil, []domain.Asset{tokenIn})
	return e.found
}

type chainAddr struct {
	chainID uint64
	addr    [20]byte
}

func assetKey(a domain.Asset) chainAddr {
	return chainAddr{chainID: a.ChainID, addr: a.Address}
}

type enumerator struct {
	tokenOut domain.Asset
	pools    []*domain.Pool
	maxHops  int
	usedPool map[string]bool
	onPath   map[chainAddr]bool
	found    []*Path
}

func (e *enumerator) dfs(frontier, tokenOut domain.Asset, chain []*domain.Pool, tokenPath []domain.Asset) {
	if len(chain) >= e.maxHops {
		return
	}

	for _, pool := range e.pools {
		if e.usedPool[pool.ID] || !pool.InvolvesToken(frontier) {
			continue
		}

		for _, next := range pool.OtherTokens(frontier) {
			if e.onPath[assetKey(next)] {
				continue
			}

			chain = append(chain, pool)
			tokenPath = append(tokenPath, next)

			if next.Equal(tokenOut) {
				e.found = append(e.found, &Path{
					Pools:     append([]*domain.Pool(nil), chain...),
					TokenIn:   tokenPath[0],
					TokenOut:  tokenOut,
					TokenPath: append([]domain.Asset(nil), tokenPath...),
				})
			} else {
				e.usedPool[pool.ID] = true
				e.onPath[assetKey(next)] = true
				e.dfs(next, tokenOut, chain, tokenPath)
				delete(e.onPath, assetKey(next))
				e.usedPool[pool.ID] = false
			}

			chain = chain[:len(chain)-1]
			tokenPath = tokenPath[:len(tokenPath)-1]
		}
	}
}
