package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/services"
)

// NewRouter monta todas as rotas da API.
func NewRouter(svc *services.MarketService, bus *events.Bus, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	tokenHandler := NewTokenHandler(svc)
	itemHandler := NewItemHandler(svc)
	accountHandler := NewAccountHandler(svc)
	eventHandler := NewEventHandler(svc, bus, logger)
	contractHandler := NewContractHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", tokenHandler.Mint)
		r.Get("/{id}", tokenHandler.GetTokenByID)
		r.Post("/{id}/approve", tokenHandler.Approve)
		r.Post("/{id}/transfer", tokenHandler.Transfer)
	})
	r.Post("/approvals", tokenHandler.SetApprovalForAll)

	r.Route("/items", func(r chi.Router) {
		r.Post("/", itemHandler.MakeItem)
		r.Get("/", itemHandler.ListItems)
		r.Get("/{id}", itemHandler.GetItemByID)
		r.Get("/{id}/total-price", itemHandler.GetTotalPrice)
		r.Post("/{id}/purchase", itemHandler.Purchase)
	})

	r.Route("/accounts/{address}", func(r chi.Router) {
		r.Get("/", accountHandler.GetAccount)
		r.Get("/tokens", accountHandler.GetAccountTokens)
		r.Post("/deposit", accountHandler.Deposit)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/ws", eventHandler.Stream)
	})

	r.Route("/contracts", func(r chi.Router) {
		r.Get("/", contractHandler.ListContracts)
		r.Get("/{name}", contractHandler.GetContract)
		r.Get("/{name}/address", contractHandler.GetContractAddress)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
