package main

import (
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swapforge/route-engine/internal/catalog"
	envutil "github.com/swapforge/route-engine/internal/common"
	"github.com/swapforge/route-engine/internal/config"
	"github.com/swapforge/route-engine/internal/http"
	"github.com/swapforge/route-engine/internal/services/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	var generalConf config.GeneralConfig
	var chainConf config.ChainConfig
	var routingConf config.RoutingConfig
	for _, load := range []func() error{generalConf.Load, chainConf.Load, routingConf.Load} {
		if err := load(); err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
	}
	setupLogger(&generalConf)

	cat, err := catalog.LoadSnapshot(chainConf.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", chainConf.CatalogPath).Msg("failed to load pool catalog")
	}

	baseTokens := make([]common.Address, 0, len(chainConf.BaseTokens))
	for _, addr := range chainConf.BaseTokens {
		baseTokens = append(baseTokens, common.HexToAddress(addr))
	}

	blacklist := router.NewBlacklist()
	selector := router.NewCandidateSelector(cat, cat, blacklist, common.HexToAddress(chainConf.WrappedNative), baseTokens)
	gasPrice := catalog.StaticGasPrice{
		Price: new(big.Int).SetUint64(envutil.GetEnvOrDefaultUint64("GAS_PRICE_WEI", 1_000_000_000)),
	}
	engine := router.NewEngine(selector, catalog.NewReferenceQuoter(cat), gasPrice, cat, blacklist, routingConf)

	svc := http.NewHTTPService(&generalConf, routingConf, engine, cat)

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := svc.Stop(); err != nil {
			os.Exit(1)
		}
	}
}

func setupLogger(conf *config.GeneralConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(conf.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if conf.Env == config.DevEnv {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
