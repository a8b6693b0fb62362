package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
)

// CallerHeader identifica a conta que executa a operação (base58).
const CallerHeader = "X-Caller"

// ErrorResponse é o corpo de toda resposta de erro.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Amount aceita valores em unidades base como número ou string JSON.
type Amount uint64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("valor inválido %s: %w", data, err)
	}
	*a = Amount(v)
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotOwner), errors.Is(err, models.ErrNotApproved):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidPrice), errors.Is(err, models.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAlreadySold):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientPayment), errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotDeployed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r).Debug("falha ao escrever resposta", zap.Int("status", status), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, r, statusFor(err), ErrorResponse{Error: models.ErrorKind(err), Message: err.Error()})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "BadRequest", Message: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, r, err.Error())
		return false
	}
	return true
}

func caller(w http.ResponseWriter, r *http.Request) (models.Address, bool) {
	raw := r.Header.Get(CallerHeader)
	if raw == "" {
		badRequest(w, r, "cabeçalho "+CallerHeader+" é obrigatório")
		return models.ZeroAddress, false
	}
	addr, err := models.ParseAddress(raw)
	if err != nil {
		writeError(w, r, err)
		return models.ZeroAddress, false
	}
	return addr, true
}

func idParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, r, "id inválido")
		return 0, false
	}
	return id, true
}

func addressParam(w http.ResponseWriter, r *http.Request) (models.Address, bool) {
	addr, err := models.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return models.ZeroAddress, false
	}
	return addr, true
}
