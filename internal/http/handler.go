package http

import (
	"context"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/swapforge/route-engine/internal/catalog"
	"github.com/swapforge/route-engine/internal/config"
	"github.com/swapforge/route-engine/internal/http/httputil"
	"github.com/swapforge/route-engine/internal/http/middlewares"
	"github.com/swapforge/route-engine/internal/services/router"
)

const API_VERSION = "v1"

type HTTPService struct {
	conf     *config.GeneralConfig
	server   *gohttp.Server
	handlers []httputil.IHttpHandler
}

func NewHTTPService(conf *config.GeneralConfig, routingDefaults config.RoutingConfig, engine *router.Engine, cat *catalog.Catalog) *HTTPService {
	return &HTTPService{
		conf: conf,
		handlers: []httputil.IHttpHandler{
			NewQuoteHandler(engine, cat, routingDefaults),
			NewPoolHandler(cat),
		},
	}
}

func (svc *HTTPService) Start() error {
	if svc.conf.Env == config.ProdEnv {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	for _, h := range svc.handlers {
		h.SetRoutes(pub.Group(h.Root()))
	}

	svc.server = &gohttp.Server{
		Addr:    svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler: r,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}
	return nil
}

func (svc *HTTPService) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}
