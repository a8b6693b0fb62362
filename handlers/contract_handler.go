package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
)

// ContractHandler publica os contratos implantados para o front-end.
type ContractHandler struct {
	Service *services.MarketService
}

func NewContractHandler(s *services.MarketService) *ContractHandler {
	return &ContractHandler{Service: s}
}

type ContractResponse struct {
	Contract   models.Contract   `json:"contract"`
	Descriptor models.Descriptor `json:"descriptor"`
}

type AddressResponse struct {
	Address models.Address `json:"address"`
}

// ListContracts lista os contratos implantados.
// GET /contracts
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts := h.Service.Contracts()
	if contracts == nil {
		contracts = []models.Contract{}
	}
	writeJSON(w, r, http.StatusOK, contracts)
}

// GetContract retorna contrato e descritor.
// GET /contracts/{name}
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, d, err := h.Service.Contract(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ContractResponse{Contract: c, Descriptor: d})
}

// GetContractAddress retorna o mesmo conteúdo de <name>-address.json.
// GET /contracts/{name}/address
func (h *ContractHandler) GetContractAddress(w http.ResponseWriter, r *http.Request) {
	c, _, err := h.Service.Contract(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AddressResponse{Address: c.Address})
}
