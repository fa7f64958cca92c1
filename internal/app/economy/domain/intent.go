package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntentKind 帳戶異動意圖的類型
// 使用 uint8 即可
type IntentKind uint8

const (
	// 建立帳戶
	IntentCreate IntentKind = 1
	// 修改餘額
	IntentBalanceChange IntentKind = 2
	// 轉帳
	IntentTransfer IntentKind = 3
	// 刪除帳戶
	IntentDelete IntentKind = 4
)

func (k IntentKind) String() string {
	switch k {
	case IntentCreate:
		return "create"
	case IntentBalanceChange:
		return "balance-change"
	case IntentTransfer:
		return "transfer"
	case IntentDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Intent 交給 Approver 審核的異動內容
//
//	IntentCreate:        Account
//	IntentBalanceChange: Account, Old, New
//	IntentTransfer:      Account (轉出方), Counterparty (轉入方), Amount
//	IntentDelete:        Account
type Intent struct {
	Kind         IntentKind
	Account      uuid.UUID
	Counterparty uuid.UUID
	Old          decimal.Decimal
	New          decimal.Decimal
	Amount       decimal.Decimal
}
