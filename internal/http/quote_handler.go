package http

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/swapforge/route-engine/internal/catalog"
	"github.com/swapforge/route-engine/internal/config"
	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/http/httputil"
	"github.com/swapforge/route-engine/internal/services/router"
)

type QuoteHandler struct {
	engine   *router.Engine
	catalog  *catalog.Catalog
	defaults config.RoutingConfig
}

func NewQuoteHandler(engine *router.Engine, cat *catalog.Catalog, defaults config.RoutingConfig) *QuoteHandler {
	return &QuoteHandler{engine: engine, catalog: cat, defaults: defaults}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

type QuoteRequest struct {
	// Input and output token contract addresses (0x-prefixed hex).
	TokenIn  string `form:"tokenIn" binding:"required"`
	TokenOut string `form:"tokenOut" binding:"required"`

	// Amount in the token's smallest unit. Interpreted per tradeType:
	// the input amount for ExactIn, the desired output for ExactOut.
	Amount string `form:"amount" binding:"required"`

	// TradeType is "ExactIn" or "ExactOut". Default: ExactIn.
	TradeType string `form:"tradeType"`

	// Optional per-request search overrides. Zero means "use defaults".
	MaxHops     int    `form:"maxHops"`
	MaxSplits   int    `form:"maxSplits"`
	MinSplits   int    `form:"minSplits"`
	BlockNumber uint64 `form:"blockNumber"`
}

// LegInfo describes one leg of the winning split plan.
type LegInfo struct {
	// Percent of the total trade routed through this leg.
	Percent int    `json:"percent"`
	Amount  string `json:"amount"`

	// Quote and AdjustedQuote in the quote-side token: the output for
	// ExactIn, the required input for ExactOut.
	Quote         string `json:"quote"`
	AdjustedQuote string `json:"adjustedQuote"`

	// TokenPath from the leg's input to its output; [in, out] for a
	// single-hop leg.
	TokenPath []string `json:"tokenPath"`

	// Pools the leg trades through, sorted for stable output.
	Pools []string `json:"pools"`
}

type QuoteResponse struct {
	TokenIn   string `json:"tokenIn"`
	TokenOut  string `json:"tokenOut"`
	TradeType string `json:"tradeType"`

	// Amount echoes the request; Quote and AdjustedQuote aggregate the
	// whole plan in the quote-side token.
	Amount        string `json:"amount"`
	Quote         string `json:"quote"`
	AdjustedQuote string `json:"adjustedQuote"`

	Legs []LegInfo `json:"legs"`
}

func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	if !common.IsHexAddress(req.TokenIn) || !common.IsHexAddress(req.TokenOut) {
		httputil.BadRequest(c, "tokenIn and tokenOut must be hex addresses")
		return
	}
	tokenIn := common.HexToAddress(req.TokenIn)
	tokenOut := common.HexToAddress(req.TokenOut)
	if tokenIn == tokenOut {
		httputil.BadRequest(c, "tokenIn and tokenOut must differ")
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		httputil.BadRequest(c, "invalid amount: must be a positive integer")
		return
	}

	tradeType := domain.ExactInput
	if req.TradeType != "" {
		if tradeType, ok = domain.ParseTradeType(req.TradeType); !ok {
			httputil.BadRequest(c, "invalid tradeType: must be ExactIn or ExactOut")
			return
		}
	}

	cfg := h.defaults
	if req.MaxHops > 0 {
		cfg.MaxHops = req.MaxHops
	}
	if req.MaxSplits > 0 {
		cfg.MaxSplits = req.MaxSplits
	}
	if req.MinSplits > 0 {
		cfg.MinSplits = req.MinSplits
	}
	cfg.BlockNumber = req.BlockNumber
	if err := cfg.Validate(); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	assets, err := h.catalog.GetAssets(c.Request.Context(), []common.Address{tokenIn, tokenOut}, cfg.BlockNumber)
	if err != nil {
		httputil.InternalError(c, "token metadata lookup failed")
		return
	}
	assetIn, okIn := assets[tokenIn]
	assetOut, okOut := assets[tokenOut]
	if !okIn || !okOut {
		httputil.NotFound(c, "unknown token")
		return
	}

	fixed, quoteSide := assetIn, assetOut
	if tradeType == domain.ExactOutput {
		fixed, quoteSide = assetOut, assetIn
	}

	plan, err := h.engine.Route(c.Request.Context(), domain.NewAssetAmount(fixed, amount), quoteSide, tradeType, &cfg)
	if err != nil {
		if router.IsNoRoute(err) {
			httputil.NotFound(c, "no route found: "+err.Error())
			return
		}
		httputil.InternalError(c, "routing failed: "+err.Error())
		return
	}

	httputil.Success(c, buildQuoteResponse(&req, tradeType, plan))
}

func buildQuoteResponse(req *QuoteRequest, tradeType domain.TradeType, plan *router.RouteWithValidQuote) QuoteResponse {
	legs := plan.SubQuotes
	if len(legs) == 0 {
		legs = []*router.RouteWithValidQuote{plan}
	}

	infos := make([]LegInfo, 0, len(legs))
	for _, leg := range legs {
		pools := leg.PoolIDs().ToSlice()
		sort.Strings(pools)
		infos = append(infos, LegInfo{
			Percent:       leg.Percent,
			Amount:        leg.Amount.Amount.String(),
			Quote:         leg.RawQuote.Amount.String(),
			AdjustedQuote: leg.AdjustedQuote.Amount.String(),
			TokenPath:     tokenPath(leg.Route),
			Pools:         pools,
		})
	}

	return QuoteResponse{
		TokenIn:       req.TokenIn,
		TokenOut:      req.TokenOut,
		TradeType:     tradeType.String(),
		Amount:        plan.Amount.Amount.String(),
		Quote:         plan.RawQuote.Amount.String(),
		AdjustedQuote: plan.AdjustedQuote.Amount.String(),
		Legs:          infos,
	}
}

func tokenPath(route router.Route) []string {
	if m, ok := route.(*router.MultiHop); ok {
		path := make([]string, 0, len(m.TokenPath))
		for _, t := range m.TokenPath {
			path = append(path, t.Address.Hex())
		}
		return path
	}
	return []string{route.Input().Address.Hex(), route.Output().Address.Hex()}
}
