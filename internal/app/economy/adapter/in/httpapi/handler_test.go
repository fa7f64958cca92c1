package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/adapter/out/memory"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
	"github.com/JoeShih716/go-economy-ledger/pkg/metrics"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bob   = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	carol = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	log, _ := test.NewNullLogger()

	storage := memory.NewJSONStorage(t.TempDir(), log)
	require.NoError(t, storage.Init(ctx))
	seed := map[uuid.UUID]struct {
		name    string
		balance string
	}{
		alice: {"Alice", "10"},
		bob:   {"Bob", "30.5"},
		carol: {"Carol", "20"},
	}
	for id, row := range seed {
		_, err := storage.CreateAccount(ctx, id, row.name, decimal.RequireFromString(row.balance))
		require.NoError(t, err)
	}

	m := metrics.New("economy")
	currency := domain.NewCurrency("Coin", "Coins", "$", 2, true)
	ledger, err := usecase.NewLedger(ctx, storage, currency, decimal.Zero,
		usecase.WithLogger(log), usecase.WithMetrics(m))
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(ledger, m.Handler(), log))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_GetAccount(t *testing.T) {
	srv := newTestServer(t)

	var got accountResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/accounts/"+bob.String(), &got))
	assert.Equal(t, accountResponse{ID: bob.String(), Name: "Bob", Balance: "30.5", Formatted: "$30.50"}, got)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/accounts/"+uuid.New().String(), &errBody))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/accounts/not-a-uuid", &errBody))
	assert.NotEmpty(t, errBody["error"])
}

func TestRouter_FindAccountByName(t *testing.T) {
	srv := newTestServer(t)

	var got accountResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/accounts?name=carol", &got))
	assert.Equal(t, carol.String(), got.ID)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/accounts?name=dave", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/accounts", nil))
}

func TestRouter_TopAccounts(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []string
	}{
		{"default limit", "", http.StatusOK, []string{bob.String(), carol.String(), alice.String()}},
		{"limit two", "?limit=2", http.StatusOK, []string{bob.String(), carol.String()}},
		{"zero limit", "?limit=0", http.StatusBadRequest, nil},
		{"too large", "?limit=1000", http.StatusBadRequest, nil},
		{"not a number", "?limit=abc", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, tt.wantStatus, getJSON(t, srv.URL+"/accounts/top"+tt.query, nil))
				return
			}
			var rows []accountResponse
			require.Equal(t, tt.wantStatus, getJSON(t, srv.URL+"/accounts/top"+tt.query, &rows))
			ids := make([]string, len(rows))
			for i, row := range rows {
				ids[i] = row.ID
				assert.Equal(t, i+1, row.Rank)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_WithoutMetrics(t *testing.T) {
	srv := httptest.NewServer(NewRouter(nil, nil, logrus.New()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
