package handlers

import (
	"net/http"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
)

// AccountHandler lida com saldos e tokens de uma conta.
type AccountHandler struct {
	Service *services.MarketService
}

func NewAccountHandler(s *services.MarketService) *AccountHandler {
	return &AccountHandler{Service: s}
}

type AccountResponse struct {
	Address    models.Address `json:"address"`
	Balance    uint64         `json:"balance"`
	TokenCount uint64         `json:"token_count"`
}

// GetAccount retorna saldo e quantidade de tokens.
// GET /accounts/{address}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, AccountResponse{
		Address:    addr,
		Balance:    h.Service.Balance(addr),
		TokenCount: h.Service.BalanceOf(addr),
	})
}

// GetAccountTokens lista os tokens da conta.
// GET /accounts/{address}/tokens
func (h *AccountHandler) GetAccountTokens(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	tokens := h.Service.TokensOf(addr)
	if tokens == nil {
		tokens = []models.Token{}
	}
	writeJSON(w, r, http.StatusOK, tokens)
}

type DepositRequest struct {
	Amount Amount `json:"amount"`
}

// Deposit credita fundos na conta.
// POST /accounts/{address}/deposit
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	var req DepositRequest
	if !decode(w, r, &req) {
		return
	}
	balance, err := h.Service.Deposit(r.Context(), addr, uint64(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AccountResponse{
		Address:    addr,
		Balance:    balance,
		TokenCount: h.Service.BalanceOf(addr),
	})
}
