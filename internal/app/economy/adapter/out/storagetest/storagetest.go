// Package storagetest 所有 Storage 實作都要通過的共用測試
package storagetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
)

// Factory 回傳一個已經 Init 完成、沒有任何帳戶的 Storage
type Factory func(t *testing.T) usecase.Storage

// Run 依序執行所有共用案例
func Run(t *testing.T, newStorage Factory) {
	t.Run("CreateAndRead", func(t *testing.T) { testCreateAndRead(t, newStorage(t)) })
	t.Run("CreateTwice", func(t *testing.T) { testCreateTwice(t, newStorage(t)) })
	t.Run("AbsentAccount", func(t *testing.T) { testAbsentAccount(t, newStorage(t)) })
	t.Run("SetBalanceExact", func(t *testing.T) { testSetBalanceExact(t, newStorage(t)) })
	t.Run("Rename", func(t *testing.T) { testRename(t, newStorage(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStorage(t)) })
	t.Run("Enumerate", func(t *testing.T) { testEnumerate(t, newStorage(t)) })
	t.Run("ConcurrentCreate", func(t *testing.T) { testConcurrentCreate(t, newStorage(t)) })
	t.Run("InitIdempotent", func(t *testing.T) { testInitIdempotent(t, newStorage(t)) })
}

func testCreateAndRead(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()

	created, err := s.CreateAccount(ctx, id, "Alice", decimal.RequireFromString("100"))
	require.NoError(t, err)
	assert.True(t, created)

	has, err := s.HasAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, has)

	balance, err := s.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100")), "got %s", balance)

	name, ok, err := s.AccountName(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Alice", name)
}

func testCreateTwice(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()

	created, err := s.CreateAccount(ctx, id, "first", decimal.NewFromInt(1))
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.CreateAccount(ctx, id, "second", decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.False(t, created)

	name, _, err := s.AccountName(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", name)
	balance, err := s.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1)))
}

func testAbsentAccount(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()

	has, err := s.HasAccount(ctx, id)
	require.NoError(t, err)
	assert.False(t, has)

	balance, err := s.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, ok, err := s.AccountName(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	// 不存在的帳戶: 寫入是 no-op，不會順便建立帳戶
	require.NoError(t, s.SetBalance(ctx, id, decimal.NewFromInt(5)))
	require.NoError(t, s.SetAccountName(ctx, id, "ghost"))
	has, err = s.HasAccount(ctx, id)
	require.NoError(t, err)
	assert.False(t, has)
}

func testSetBalanceExact(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()
	_, err := s.CreateAccount(ctx, id, "Bob", decimal.Zero)
	require.NoError(t, err)

	for _, raw := range []string{"123.456700", "0.000000000000000001", "98765432109876543210.5", "0"} {
		want := decimal.RequireFromString(raw)
		require.NoError(t, s.SetBalance(ctx, id, want))
		got, err := s.Balance(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "set %s got %s", raw, got)
	}
}

func testRename(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()
	_, err := s.CreateAccount(ctx, id, "old", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, s.SetAccountName(ctx, id, "new"))
	name, ok, err := s.AccountName(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", name)
}

func testDelete(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()
	_, err := s.CreateAccount(ctx, id, "Carol", decimal.NewFromInt(7))
	require.NoError(t, err)

	removed, err := s.DeleteAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteAccount(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)

	has, err := s.HasAccount(ctx, id)
	require.NoError(t, err)
	assert.False(t, has)

	// 刪除後可以重新建立
	created, err := s.CreateAccount(ctx, id, "Carol", decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, created)
	balance, err := s.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(3)))
}

func testEnumerate(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	want := map[uuid.UUID]decimal.Decimal{
		uuid.New(): decimal.RequireFromString("10"),
		uuid.New(): decimal.RequireFromString("30.5"),
		uuid.New(): decimal.RequireFromString("0"),
	}
	for id, balance := range want {
		_, err := s.CreateAccount(ctx, id, id.String(), balance)
		require.NoError(t, err)
	}

	ids, err := s.AllAccountIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, keys(want), ids)

	balances, err := s.AllBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, len(want))
	for id, balance := range want {
		assert.True(t, balances[id].Equal(balance), "account %s", id)
	}
}

func testConcurrentCreate(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.CreateAccount(ctx, id, "racer", decimal.Zero)
			assert.NoError(t, err)
			if created {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func testInitIdempotent(t *testing.T, s usecase.Storage) {
	ctx := context.Background()
	id := uuid.New()
	_, err := s.CreateAccount(ctx, id, "Dave", decimal.NewFromInt(9))
	require.NoError(t, err)

	require.NoError(t, s.Init(ctx))
	has, err := s.HasAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, has)
}

func keys(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
