package config

import (
	"errors"
	"strings"

	"github.com/swapforge/route-engine/internal/common"
)

// ChainConfig pins the deployment to one chain: the wrapped-native
// reference asset used by the gas model and the base ("blue chip") assets
// the candidate selector routes through.
type ChainConfig struct {
	ChainID       uint64
	WrappedNative string
	BaseTokens    []string // comma-separated addresses in the env

	// CatalogPath points at the pool/token snapshot the in-memory catalog
	// loads at startup.
	CatalogPath string
}

func (cc *ChainConfig) Load() error {
	cc.ChainID = common.GetEnvOrDefaultUint64("CHAIN_ID", 1)
	cc.WrappedNative = common.GetEnvOrDefault("WRAPPED_NATIVE_ADDRESS", "")
	cc.CatalogPath = common.GetEnvOrDefault("CATALOG_PATH", "./data/catalog.json")

	cc.BaseTokens = nil
	for _, addr := range strings.Split(common.GetEnvOrDefault("BASE_TOKEN_ADDRESSES", ""), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cc.BaseTokens = append(cc.BaseTokens, addr)
		}
	}
	return cc.Validate()
}

func (cc *ChainConfig) Validate() error {
	if cc.WrappedNative == "" {
		return errors.New("chain config: wrapped native address is required")
	}
	return nil
}
