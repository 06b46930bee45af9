/**
 * @description
 * HTTP handlers for the account service. Withdrawal and deposit bodies carry
 * the amount as a bare decimal string; malformed amounts are rejected before
 * any balance mutation.
 */
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/account/app"
	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
	"github.com/acmebank/overdraft-pipeline/internal/account/store"
)

// StatsSource exposes the overdrawn publisher's outcome counters.
type StatsSource interface {
	Stats() app.PublishStats
}

// Handler holds the ledger and publisher stats that handlers interact with.
type Handler struct {
	ledger *app.Ledger
	stats  StatsSource
}

func NewHandler(ledger *app.Ledger, stats StatsSource) *Handler {
	return &Handler{ledger: ledger, stats: stats}
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledger.ListAccounts(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account payload"})
		return
	}
	if account.AccountNumber == 0 {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "account_number is required"})
		return
	}

	created, err := h.ledger.CreateAccount(r.Context(), account)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	account, err := h.ledger.GetAccount(r.Context(), accountNumber)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), accountNumber)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balance)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := accountNumberParam(w, r)
	if !ok {
		return
	}
	amount, err := amountFromBody(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	account, err := h.ledger.Withdraw(r.Context(), accountNumber, amount)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := accountNumberParam(w, r)
	if !ok {
		return
	}
	amount, err := amountFromBody(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	account, err := h.ledger.Deposit(r.Context(), accountNumber, amount)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *Handler) handleCloseAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Close(r.Context(), accountNumber); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearOverdrawnStatus(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	account, err := h.ledger.RemoveOverdrawnStatus(r.Context(), accountNumber)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *Handler) handlePublishStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.stats.Stats())
}

func accountNumberParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "accountNumber")
	accountNumber, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account number"})
		return 0, false
	}
	return accountNumber, true
}

// maxAmountBody bounds withdrawal/deposit bodies; a decimal string never
// comes close.
const maxAmountBody = 1024

// amountFromBody reads the request body as a decimal string. A JSON-quoted
// string like "23.82" is accepted as well as the bare form. Oversized bodies
// are rejected outright rather than parsed from a truncated prefix.
func amountFromBody(r *http.Request) (decimal.Decimal, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAmountBody+1))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(body) > maxAmountBody {
		return decimal.Decimal{}, fmt.Errorf("%w: amount body exceeds %d bytes", app.ErrInvalidAmount, maxAmountBody)
	}
	raw := strings.Trim(strings.TrimSpace(string(body)), `"`)
	return app.ParseAmount(raw)
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		respondWithJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrAccountExists),
		errors.Is(err, app.ErrAccountOverdrawn),
		errors.Is(err, app.ErrAccountClosed):
		respondWithJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, app.ErrInvalidAmount):
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("account-api: %s %s failed: %v", r.Method, r.URL.Path, err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
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
