// Package httpapi 唯讀的管理 API (排行榜、帳戶查詢、metrics)
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
)

// Ledger HTTP 層需要的帳本查詢
type Ledger interface {
	DefaultCurrency() domain.Currency
	Account(ctx context.Context, id uuid.UUID) (*usecase.Account, bool)
	AccountByName(ctx context.Context, name string) (*usecase.Account, bool)
	Leaderboard(ctx context.Context, limit int) []usecase.Ranking
}

// NewRouter 註冊所有路由，metrics 為 nil 時不提供 /metrics
func NewRouter(ledger Ledger, metrics http.Handler, log logrus.FieldLogger) http.Handler {
	h := NewHandler(ledger, log)
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.FindAccountHandler)
		r.Get("/top", h.TopAccountsHandler)
		r.Get("/{accountId}", h.GetAccountHandler)
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

// NewServer 建立設定好 timeout 的 *http.Server
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
