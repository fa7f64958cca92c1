package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Handler 把帳本查詢轉成 JSON
type Handler struct {
	ledger Ledger
	log    logrus.FieldLogger
}

func NewHandler(ledger Ledger, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{ledger: ledger, log: log.WithField("component", "http")}
}

type accountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
	Rank      int    `json:"rank,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) view(r *http.Request, acc *usecase.Account) accountResponse {
	cur := h.ledger.DefaultCurrency()
	balance := acc.Balance(r.Context(), cur)
	return accountResponse{
		ID:        acc.ID().String(),
		Name:      acc.Name(r.Context()),
		Balance:   domain.PlainString(balance),
		Formatted: cur.FormatDefault(balance),
	}
}

// GetAccountHandler GET /accounts/{accountId}
func (h *Handler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAccountID(chi.URLParam(r, "accountId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	acc, ok := h.ledger.Account(r.Context(), id)
	if !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrAccountNotFound.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.view(r, acc))
}

// FindAccountHandler GET /accounts?name=...
func (h *Handler) FindAccountHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	acc, ok := h.ledger.AccountByName(r.Context(), name)
	if !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrAccountNotFound.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.view(r, acc))
}

// TopAccountsHandler GET /accounts/top?limit=N
func (h *Handler) TopAccountsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxTopLimit {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxTopLimit))
			return
		}
		limit = n
	}

	cur := h.ledger.DefaultCurrency()
	rows := h.ledger.Leaderboard(r.Context(), limit)
	out := make([]accountResponse, 0, len(rows))
	for i, row := range rows {
		out = append(out, accountResponse{
			ID:        row.Account.ID().String(),
			Name:      row.Account.Name(r.Context()),
			Balance:   domain.PlainString(row.Balance),
			Formatted: cur.FormatDefault(row.Balance),
			Rank:      i + 1,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
