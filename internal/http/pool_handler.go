package http

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/swapforge/route-engine/internal/catalog"
	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/http/httputil"
)

type PoolHandler struct {
	catalog *catalog.Catalog
}

func NewPoolHandler(cat *catalog.Catalog) *PoolHandler {
	return &PoolHandler{catalog: cat}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup) {
	pub.GET("", h.listPools)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

type PoolListResponse struct {
	Count int              `json:"count"`
	Pools []domain.RawPool `json:"pools"`
}

// listPools returns the loaded catalog, optionally filtered to pools
// touching one token (?token=0x...).
func (h *PoolHandler) listPools(c *gin.Context) {
	pools, err := h.catalog.GetPools(c.Request.Context(), 0)
	if err != nil {
		httputil.InternalError(c, "pool catalog lookup failed")
		return
	}

	if token := c.Query("token"); token != "" {
		if !common.IsHexAddress(token) {
			httputil.BadRequest(c, "token must be a hex address")
			return
		}
		addr := common.HexToAddress(token)
		filtered := pools[:0]
		for _, p := range pools {
			if p.InvolvesAddress(addr) {
				filtered = append(filtered, p)
			}
		}
		pools = filtered
	}

	httputil.Success(c, PoolListResponse{Count: len(pools), Pools: pools})
}
