package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
)

// Account 帳本中的帳戶，只持有 id，名稱與餘額每次都從 Storage 讀取
type Account struct {
	id     uuid.UUID
	ledger *Ledger
}

func newAccount(id uuid.UUID, ledger *Ledger) *Account {
	return &Account{id: id, ledger: ledger}
}

// ID 帳戶 id
func (a *Account) ID() uuid.UUID {
	return a.id
}

// Name 顯示名稱，沒有設定時回傳 id 字串
func (a *Account) Name(ctx context.Context) string {
	name, ok, err := a.ledger.storage.AccountName(ctx, a.id)
	if err != nil {
		a.ledger.storageError(err, "get_name", a.id)
		return a.id.String()
	}
	if !ok || name == "" {
		return a.id.String()
	}
	return name
}

// Balance 取得餘額 (單一貨幣，currency 只做相容性檢查)
func (a *Account) Balance(ctx context.Context, currency domain.Currency) decimal.Decimal {
	return a.ledger.Balance(ctx, a, currency)
}

// Balances 以貨幣名稱為 key 的餘額 (只有預設貨幣)
func (a *Account) Balances(ctx context.Context) map[string]decimal.Decimal {
	cur := a.ledger.currency
	return map[string]decimal.Decimal{cur.Name(): a.ledger.Balance(ctx, a, cur)}
}

// SetBalance 見 Ledger.SetBalance
func (a *Account) SetBalance(ctx context.Context, currency domain.Currency, amount decimal.Decimal) bool {
	return a.ledger.SetBalance(ctx, a, currency, amount)
}

// Deposit 見 Ledger.Deposit
func (a *Account) Deposit(ctx context.Context, currency domain.Currency, amount decimal.Decimal) bool {
	return a.ledger.Deposit(ctx, a, currency, amount)
}

// Withdraw 見 Ledger.Withdraw
func (a *Account) Withdraw(ctx context.Context, currency domain.Currency, amount decimal.Decimal) bool {
	return a.ledger.Withdraw(ctx, a, currency, amount)
}

// Transfer 見 Ledger.Transfer
func (a *Account) Transfer(ctx context.Context, to *Account, currency domain.Currency, amount decimal.Decimal) bool {
	return a.ledger.Transfer(ctx, a, to, currency, amount)
}
