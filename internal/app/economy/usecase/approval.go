package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
)

// Approver 在建立帳戶、修改餘額、轉帳、刪除帳戶之前被同步呼叫，回傳 false 即否決
type Approver interface {
	Approve(ctx context.Context, intent domain.Intent) bool
}

// ApproverFunc 讓一般函式實作 Approver
type ApproverFunc func(ctx context.Context, intent domain.Intent) bool

func (f ApproverFunc) Approve(ctx context.Context, intent domain.Intent) bool {
	return f(ctx, intent)
}

// ApproverChain 所有 Approver 都同意才通過，遇到第一個否決就停止
type ApproverChain []Approver

func (c ApproverChain) Approve(ctx context.Context, intent domain.Intent) bool {
	for _, a := range c {
		if a != nil && !a.Approve(ctx, intent) {
			return false
		}
	}
	return true
}

// NameResolver 首次建立帳戶時查詢玩家名稱 (例如線上玩家列表)
type NameResolver interface {
	ResolveName(ctx context.Context, id uuid.UUID) (string, bool)
}

// NameResolverFunc 讓一般函式實作 NameResolver
type NameResolverFunc func(ctx context.Context, id uuid.UUID) (string, bool)

func (f NameResolverFunc) ResolveName(ctx context.Context, id uuid.UUID) (string, bool) {
	return f(ctx, id)
}

var (
	_ Approver     = ApproverChain(nil)
	_ NameResolver = NameResolverFunc(nil)
)
