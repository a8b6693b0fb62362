package handlers

import (
	"net/http"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
)

// TokenHandler lida com requisições HTTP do Registry.
type TokenHandler struct {
	Service *services.MarketService
}

func NewTokenHandler(s *services.MarketService) *TokenHandler {
	return &TokenHandler{Service: s}
}

type MintRequest struct {
	MetadataURI string `json:"metadata_uri"`
}

// TokenResponse é um token com sua aprovação individual.
type TokenResponse struct {
	models.Token
	Approved *models.Address `json:"approved,omitempty"`
}

// Mint cunha um token para o chamador.
// POST /tokens
func (h *TokenHandler) Mint(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req MintRequest
	if !decode(w, r, &req) {
		return
	}

	token, err := h.Service.Mint(r.Context(), from, req.MetadataURI)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, TokenResponse{Token: token})
}

// GetTokenByID obtém um token pelo id.
// GET /tokens/{id}
func (h *TokenHandler) GetTokenByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	token, err := h.Service.Token(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := TokenResponse{Token: token}
	if approved, err := h.Service.GetApproved(id); err == nil && !approved.IsZero() {
		resp.Approved = &approved
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type ApproveRequest struct {
	To models.Address `json:"to"`
}

// Approve aprova uma conta para transferir um único token.
// POST /tokens/{id}/approve
func (h *TokenHandler) Approve(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ApproveRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.Approve(r.Context(), from, req.To, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TransferRequest struct {
	From models.Address `json:"from"`
	To   models.Address `json:"to"`
}

// Transfer move um token.
// POST /tokens/{id}/transfer
func (h *TokenHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.TransferFrom(r.Context(), from, req.From, req.To, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ApprovalForAllRequest struct {
	Operator models.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

// SetApprovalForAll concede ou revoga um operador.
// POST /approvals
func (h *TokenHandler) SetApprovalForAll(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req ApprovalForAllRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.SetApprovalForAll(r.Context(), from, req.Operator, req.Approved); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
