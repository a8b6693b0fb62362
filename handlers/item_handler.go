package handlers

import (
	"net/http"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
)

// ItemHandler lida com requisições HTTP do Marketplace.
type ItemHandler struct {
	Service *services.MarketService
}

func NewItemHandler(s *services.MarketService) *ItemHandler {
	return &ItemHandler{Service: s}
}

type MakeItemRequest struct {
	NFT     models.Address `json:"nft"`
	TokenID uint64         `json:"token_id"`
	Price   Amount         `json:"price"`
}

// MakeItem lista um token do chamador.
// POST /items
func (h *ItemHandler) MakeItem(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req MakeItemRequest
	if !decode(w, r, &req) {
		return
	}
	ref := models.TokenRef{Registry: req.NFT, TokenID: req.TokenID}
	item, err := h.Service.MakeItem(r.Context(), from, ref, uint64(req.Price))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

// ListItems lista todos os itens.
// GET /items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items := h.Service.Items()
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

// GetItemByID obtém um item pelo id.
// GET /items/{id}
func (h *ItemHandler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := h.Service.Item(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

type TotalPriceResponse struct {
	ItemID     uint64 `json:"item_id"`
	TotalPrice uint64 `json:"total_price"`
}

// GetTotalPrice retorna preço mais taxa.
// GET /items/{id}/total-price
func (h *ItemHandler) GetTotalPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	total, err := h.Service.GetTotalPrice(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, TotalPriceResponse{ItemID: id, TotalPrice: total})
}

type PurchaseRequest struct {
	Payment Amount `json:"payment"`
}

// Purchase compra o item com o saldo do chamador.
// POST /items/{id}/purchase
func (h *ItemHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	buyer, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req PurchaseRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.Service.PurchaseItem(r.Context(), buyer, id, uint64(req.Payment))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}
