package router

import (
	"github.com/gin-gonic/gin"

	"github.com/gridcert/exchange/exchangeService/internal/http/handlers"
)

func registerOrderBookRoutes(router gin.IRouter, orderHandler *handlers.OrderHandler, tradeFeed gin.HandlerFunc) {
	orderBook := router.Group("/orderbook")
	{
		orderBook.POST("/search", orderHandler.Search)
		if tradeFeed != nil {
			orderBook.GET("/trades/ws", tradeFeed)
		}
	}
}

func registerOrderRoutes(router gin.IRouter, orderHandler *handlers.OrderHandler) {
	orders := router.Group("/orders")
	{
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.POST("/ask", orderHandler.CreateAsk)
		orders.POST("/ask/buy", orderHandler.DirectBuy)
		orders.POST("/bid", orderHandler.CreateBid)
		orders.POST("/:id/cancel", orderHandler.Cancel)
	}

	router.GET("/trades", orderHandler.Trades)
}

func registerAccountRoutes(router gin.IRouter, ledgerHandler *handlers.LedgerHandler) {
	router.GET("/account", ledgerHandler.Account)

	transfers := router.Group("/transfers")
	{
		transfers.GET("", ledgerHandler.Transfers)
		transfers.POST("/withdrawal", ledgerHandler.Withdraw)
	}
}

// registerTransferWatcherRoutes exposes the hooks the chain watcher calls.
// They carry no user identity.
func registerTransferWatcherRoutes(router gin.IRouter, ledgerHandler *handlers.LedgerHandler) {
	transfers := router.Group("/transfers")
	{
		transfers.POST("/deposit", ledgerHandler.Deposit)
		transfers.POST("/confirm", ledgerHandler.Confirm)
		transfers.POST("/fail", ledgerHandler.Fail)
	}
}

func registerPublicationRoutes(router gin.IRouter, publicationHandler *handlers.PublicationHandler) {
	publications := router.Group("/publications")
	{
		publications.POST("", publicationHandler.Create)
		publications.GET("/:id", publicationHandler.Get)
		publications.DELETE("/:id", publicationHandler.Cancel)
	}
}
