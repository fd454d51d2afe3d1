package catalog

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"

	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/metrics"
	"github.com/swapforge/route-engine/internal/services"
)

// Catalog is an in-memory pool and asset store loaded from a JSON snapshot.
// It backs the engine's catalog, metadata, and reserve collaborators in one
// place. Reads are lock-striped by a single RWMutex; a snapshot reload
// swaps the whole dataset atomically under the write lock.
type Catalog struct {
	mu       sync.RWMutex
	chainID  uint64
	pools    []domain.RawPool
	assets   map[common.Address]domain.Asset
	reserves map[string][]reserveEntry
	feeBps   map[string]uint16
	log      *services.ServiceLogger
}

type reserveEntry struct {
	token  common.Address
	amount *big.Int
}

// Snapshot is the on-disk catalog format.
type Snapshot struct {
	ChainID uint64          `json:"chainId"`
	Assets  []SnapshotAsset `json:"assets"`
	Pools   []SnapshotPool  `json:"pools"`
}

type SnapshotAsset struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}

type SnapshotPool struct {
	ID             string          `json:"id"`
	Protocol       string          `json:"protocol"`
	FeeBps         uint16          `json:"feeBps,omitempty"`
	LiquidityScore float64         `json:"liquidityScore"`
	Tokens         []SnapshotToken `json:"tokens"`
}

type SnapshotToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol,omitempty"`
	// Reserve is a decimal string in the token's smallest unit.
	Reserve string `json:"reserve,omitempty"`
}

func New(chainID uint64) *Catalog {
	return &Catalog{
		chainID:  chainID,
		assets:   make(map[common.Address]domain.Asset),
		reserves: make(map[string][]reserveEntry),
		feeBps:   make(map[string]uint16),
		log:      services.NewServiceLogger("catalog.Catalog"),
	}
}

// LoadSnapshot reads and applies a snapshot file.
func LoadSnapshot(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}

	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse catalog snapshot: %w", err)
	}

	c := New(snap.ChainID)
	if err := c.Apply(&snap); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply replaces the catalog contents with the snapshot's. Pools with
// malformed reserve strings are rejected, not silently zeroed.
func (c *Catalog) Apply(snap *Snapshot) error {
	assets := make(map[common.Address]domain.Asset, len(snap.Assets))
	for _, a := range snap.Assets {
		addr := common.HexToAddress(a.Address)
		assets[addr] = domain.Asset{
			ChainID:  snap.ChainID,
			Address:  addr,
			Decimals: a.Decimals,
			Symbol:   a.Symbol,
			Name:     a.Name,
		}
	}

	pools := make([]domain.RawPool, 0, len(snap.Pools))
	reserves := make(map[string][]reserveEntry, len(snap.Pools))
	fees := make(map[string]uint16, len(snap.Pools))
	for _, p := range snap.Pools {
		// Pool ids are lower-cased on entry; every downstream consumer
		// keys reserves and fees by the canonical id.
		raw := domain.RawPool{
			ID:             strings.ToLower(p.ID),
			Protocol:       p.Protocol,
			LiquidityScore: p.LiquidityScore,
		}
		entries := make([]reserveEntry, 0, len(p.Tokens))
		for _, t := range p.Tokens {
			raw.Tokens = append(raw.Tokens, domain.RawPoolToken{Address: t.Address, Symbol: t.Symbol})
			if t.Reserve == "" {
				continue
			}
			amount, ok := new(big.Int).SetString(t.Reserve, 10)
			if !ok || amount.Sign() < 0 {
				return fmt.Errorf("catalog snapshot: pool %s token %s: bad reserve %q", p.ID, t.Address, t.Reserve)
			}
			entries = append(entries, reserveEntry{token: common.HexToAddress(t.Address), amount: amount})
		}
		pools = append(pools, raw)
		if len(entries) > 0 {
			reserves[raw.ID] = entries
		}
		if p.FeeBps > 0 {
			fees[raw.ID] = p.FeeBps
		}
	}

	c.mu.Lock()
	c.chainID = snap.ChainID
	c.pools = pools
	c.assets = assets
	c.reserves = reserves
	c.feeBps = fees
	c.mu.Unlock()

	metrics.CatalogPoolCount.Set(float64(len(pools)))
	metrics.CatalogAssetCount.Set(float64(len(assets)))
	c.log.Info().Uint64("chain_id", snap.ChainID).Int("pools", len(pools)).Int("assets", len(assets)).Msg("catalog snapshot applied")
	return nil
}

func (c *Catalog) ChainID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainID
}

// GetPools returns the full pool list. The catalog holds one snapshot at a
// time, so the block number is accepted for interface compatibility and
// ignored.
func (c *Catalog) GetPools(ctx context.Context, blockNumber uint64) ([]domain.RawPool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.RawPool, len(c.pools))
	copy(out, c.pools)
	return out, nil
}

// GetAssets resolves the requested addresses against the loaded metadata.
// Unknown addresses are absent from the result.
func (c *Catalog) GetAssets(ctx context.Context, addresses []common.Address, blockNumber uint64) (map[common.Address]domain.Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[common.Address]domain.Asset, len(addresses))
	for _, addr := range addresses {
		if a, ok := c.assets[addr]; ok {
			out[addr] = a
		}
	}
	return out, nil
}

// GetReserves returns the first two reserves of the pool in its token
// order.
func (c *Catalog) GetReserves(ctx context.Context, poolID string) (*big.Int, *big.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, ok := c.reserves[poolID]
	if !ok || len(entries) < 2 {
		return nil, nil, fmt.Errorf("catalog: no reserves for pool %s", poolID)
	}
	return new(big.Int).Set(entries[0].amount), new(big.Int).Set(entries[1].amount), nil
}

// tokenReserves orients a pool's reserves to a (tokenIn, tokenOut) pair.
func (c *Catalog) tokenReserves(poolID string, tokenIn, tokenOut common.Address) (*big.Int, *big.Int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var reserveIn, reserveOut *big.Int
	for _, e := range c.reserves[poolID] {
		switch e.token {
		case tokenIn:
			reserveIn = e.amount
		case tokenOut:
			reserveOut = e.amount
		}
	}
	if reserveIn == nil || reserveOut == nil {
		return nil, nil, false
	}
	return new(big.Int).Set(reserveIn), new(big.Int).Set(reserveOut), true
}

func (c *Catalog) poolFeeBps(poolID string) uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if fee, ok := c.feeBps[poolID]; ok {
		return fee
	}
	return defaultFeeBps
}
