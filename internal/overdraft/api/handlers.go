/**
 * @description
 * HTTP handlers for the overdraft service: the read-only list of account
 * overdraft aggregates and the administrative overdraft-limit update.
 */
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/overdraft/app"
)

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) handleListOverdrafts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.ListAllAccountOverdrafts())
}

func (h *Handler) handleUpdateLimit(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := strconv.ParseInt(chi.URLParam(r, "accountNumber"), 10, 64)
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account number"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1024))
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}
	raw := strings.Trim(strings.TrimSpace(string(body)), `"`)
	newLimit, err := decimal.NewFromString(raw)
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid overdraft limit"})
		return
	}

	if err := h.service.RequestLimitUpdate(r.Context(), accountNumber, newLimit); err != nil {
		log.Printf("overdraft-api: limit update for account %d failed: %v", accountNumber, err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not publish limit update"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
