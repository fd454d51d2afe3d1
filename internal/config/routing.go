package config

import (
	"errors"

	"github.com/swapforge/route-engine/internal/common"
)

// RoutingConfig holds the per-request search parameters. A process-wide
// default is loaded from the environment; callers may override individual
// knobs per request. The struct is treated as immutable once handed to the
// engine.
type RoutingConfig struct {
	// Pool-selection breadth.
	TopN                  int // top pools by raw liquidity
	TopNTokenInOut        int // top pools touching tokenIn / tokenOut
	TopNSecondHop         int // extension pools per second-hop token
	TopNWithEachBaseToken int // per (token, base asset) pair
	TopNWithBaseToken     int // global cap across base-token pairs

	// FoldBaseSelections counts the base-token selections as already
	// selected before the later heuristics run, reducing overlap between
	// the subsets. Affects which pools are picked, not correctness.
	FoldBaseSelections bool

	// Search bounds.
	MaxHops   int
	MinSplits int
	MaxSplits int

	// Percent-breakpoint granularities: the outer grid splits the trade
	// across complete paths, the inner grid splits within a single hop.
	DistributionPercent      int
	InnerDistributionPercent int

	// Protocol filters. Empty IncludedProtocols means "all".
	IncludedProtocols map[string]struct{}
	ExcludedProtocols map[string]struct{}

	// BlockNumber pins every collaborator read to one chain state.
	// Zero means "latest".
	BlockNumber uint64
}

func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		TopN:                     10,
		TopNTokenInOut:           5,
		TopNSecondHop:            2,
		TopNWithEachBaseToken:    2,
		TopNWithBaseToken:        6,
		FoldBaseSelections:       false,
		MaxHops:                  3,
		MinSplits:                1,
		MaxSplits:                7,
		DistributionPercent:      10,
		InnerDistributionPercent: 25,
	}
}

func (rc *RoutingConfig) Load() error {
	*rc = DefaultRoutingConfig()
	rc.TopN = common.GetEnvOrDefaultInt("ROUTING_TOP_N", rc.TopN)
	rc.TopNTokenInOut = common.GetEnvOrDefaultInt("ROUTING_TOP_N_TOKEN_IN_OUT", rc.TopNTokenInOut)
	rc.TopNSecondHop = common.GetEnvOrDefaultInt("ROUTING_TOP_N_SECOND_HOP", rc.TopNSecondHop)
	rc.TopNWithEachBaseToken = common.GetEnvOrDefaultInt("ROUTING_TOP_N_EACH_BASE", rc.TopNWithEachBaseToken)
	rc.TopNWithBaseToken = common.GetEnvOrDefaultInt("ROUTING_TOP_N_BASE", rc.TopNWithBaseToken)
	rc.FoldBaseSelections = common.GetEnvOrDefaultBool("ROUTING_FOLD_BASE_SELECTIONS", rc.FoldBaseSelections)
	rc.MaxHops = common.GetEnvOrDefaultInt("ROUTING_MAX_HOPS", rc.MaxHops)
	rc.MinSplits = common.GetEnvOrDefaultInt("ROUTING_MIN_SPLITS", rc.MinSplits)
	rc.MaxSplits = common.GetEnvOrDefaultInt("ROUTING_MAX_SPLITS", rc.MaxSplits)
	rc.DistributionPercent = common.GetEnvOrDefaultInt("ROUTING_DISTRIBUTION_PERCENT", rc.DistributionPercent)
	rc.InnerDistributionPercent = common.GetEnvOrDefaultInt("ROUTING_INNER_DISTRIBUTION_PERCENT", rc.InnerDistributionPercent)
	return rc.Validate()
}

func (rc *RoutingConfig) Validate() error {
	if rc.MaxHops < 1 {
		return errors.New("routing config: max hops must be >= 1")
	}
	if rc.MinSplits < 1 || rc.MaxSplits < rc.MinSplits {
		return errors.New("routing config: invalid split bounds")
	}
	if 100%rc.DistributionPercent != 0 || 100%rc.InnerDistributionPercent != 0 {
		return errors.New("routing config: distribution percents must divide 100")
	}
	return nil
}

// ProtocolAllowed applies the include/exclude filters.
func (rc *RoutingConfig) ProtocolAllowed(protocol string) bool {
	if _, banned := rc.ExcludedProtocols[protocol]; banned {
		return false
	}
	if len(rc.IncludedProtocols) == 0 {
		return true
	}
	_, ok := rc.IncludedProtocols[protocol]
	return ok
}
