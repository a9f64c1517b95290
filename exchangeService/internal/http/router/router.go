package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridcert/exchange/exchangeService/internal/http/handlers"
	"github.com/gridcert/exchange/shared/middleware/recovery"
	"github.com/gridcert/exchange/shared/middleware/requestlog"
	"github.com/gridcert/exchange/shared/middleware/userid"
	"github.com/gridcert/exchange/shared/middleware/xrequestid"
)

type Config struct {
	OrderHandler       *handlers.OrderHandler
	LedgerHandler      *handlers.LedgerHandler
	PublicationHandler *handlers.PublicationHandler
	// TradeFeed serves the websocket trade stream; nil disables the route.
	TradeFeed gin.HandlerFunc
	// Metrics serves /metrics; nil disables the route.
	Metrics http.Handler
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(xrequestid.Server(), requestlog.Handler(), recovery.Handler())

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	registerOrderBookRoutes(router, cfg.OrderHandler, cfg.TradeFeed)
	registerTransferWatcherRoutes(router, cfg.LedgerHandler)

	authorized := router.Group("/", userid.Required())
	registerOrderRoutes(authorized, cfg.OrderHandler)
	registerAccountRoutes(authorized, cfg.LedgerHandler)
	registerPublicationRoutes(authorized, cfg.PublicationHandler)

	return router
}
