package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
)

type fakeRow struct {
	name    string
	balance decimal.Decimal
}

// fakeStorage 記憶體 Storage，可注入寫入錯誤
type fakeStorage struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]*fakeRow
	createCalls int
	deleteErr   error
	// onSetBalance 回傳錯誤時該次寫入不生效
	onSetBalance func(id uuid.UUID, balance decimal.Decimal) error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{rows: make(map[uuid.UUID]*fakeRow)}
}

func (s *fakeStorage) put(id uuid.UUID, name string, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = &fakeRow{name: name, balance: decimal.RequireFromString(balance)}
}

func (s *fakeStorage) balance(id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		return row.balance
	}
	return decimal.Zero
}

func (s *fakeStorage) Init(context.Context) error     { return nil }
func (s *fakeStorage) Shutdown(context.Context) error { return nil }
func (s *fakeStorage) Save(context.Context) error     { return nil }

func (s *fakeStorage) HasAccount(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	return ok, nil
}

func (s *fakeStorage) Balance(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	return s.balance(id), nil
}

func (s *fakeStorage) SetBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	s.mu.Lock()
	hook := s.onSetBalance
	s.mu.Unlock()
	if hook != nil {
		if err := hook(id, balance); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.balance = balance
	}
	return nil
}

func (s *fakeStorage) AccountName(_ context.Context, id uuid.UUID) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		return row.name, true, nil
	}
	return "", false, nil
}

func (s *fakeStorage) SetAccountName(_ context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.name = name
	}
	return nil
}

func (s *fakeStorage) CreateAccount(_ context.Context, id uuid.UUID, name string, initial decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if _, ok := s.rows[id]; ok {
		return false, nil
	}
	s.rows[id] = &fakeRow{name: name, balance: initial}
	return true, nil
}

func (s *fakeStorage) DeleteAccount(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	if _, ok := s.rows[id]; !ok {
		return false, nil
	}
	delete(s.rows, id)
	return true, nil
}

func (s *fakeStorage) AllBalances(context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]decimal.Decimal, len(s.rows))
	for id, row := range s.rows {
		out[id] = row.balance
	}
	return out, nil
}

func (s *fakeStorage) AllAccountIDs(context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(s.rows))
	for id := range s.rows {
		out = append(out, id)
	}
	return out, nil
}

var _ Storage = (*fakeStorage)(nil)

// memJournal 記憶體中的 Journal，failWrite 回傳錯誤時該筆不寫入
type memJournal struct {
	mu        sync.Mutex
	entries   [][]byte
	failWrite func(rec *domain.TransferRecord) error
}

func (j *memJournal) Write(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if rec, ok := v.(*domain.TransferRecord); ok && j.failWrite != nil {
		if err := j.failWrite(rec); err != nil {
			return err
		}
	}
	j.entries = append(j.entries, raw)
	return nil
}

func (j *memJournal) setFailWrite(fn func(rec *domain.TransferRecord) error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failWrite = fn
}

func (j *memJournal) ReadAll(callback func(jsonRaw []byte) error) error {
	j.mu.Lock()
	entries := append([][]byte(nil), j.entries...)
	j.mu.Unlock()
	for _, raw := range entries {
		if err := callback(raw); err != nil {
			return err
		}
	}
	return nil
}

func (j *memJournal) Truncate() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
	return nil
}

func (j *memJournal) phases(t *testing.T) []domain.TransferPhase {
	t.Helper()
	var out []domain.TransferPhase
	require.NoError(t, j.ReadAll(func(raw []byte) error {
		rec, err := domain.DecodeTransferRecord(raw)
		if err != nil {
			return err
		}
		out = append(out, rec.Phase)
		return nil
	}))
	return out
}

// countingRecorder 記錄每個 op/result 的次數
type countingRecorder struct {
	mu       sync.Mutex
	counts   map[string]int
	accounts int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (r *countingRecorder) ObserveOperation(op string, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[op+"/"+result]++
}

func (r *countingRecorder) SetAccounts(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = n
}

func (r *countingRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

var testCurrency = domain.NewCurrency("Coin", "Coins", "$", 2, true)

func newTestLedger(t *testing.T, storage Storage, opts ...Option) *Ledger {
	t.Helper()
	log, _ := test.NewNullLogger()
	opts = append([]Option{WithLogger(log)}, opts...)
	l, err := NewLedger(context.Background(), storage, testCurrency, decimal.RequireFromString("50"), opts...)
	require.NoError(t, err)
	return l
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
