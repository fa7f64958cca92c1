package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Storage 帳戶資料的持久化介面 (JSON / SQLite / MySQL 三種實作可互換)
//
// 所有寫入都是原始操作 (primitive)：對不存在的帳戶 SetBalance / SetAccountName 直接略過，
// 存在與否的檢查由 Ledger 負責。錯誤一律以 error 回傳，由 Ledger 記錄後轉成 false/零值。
type Storage interface {
	// Init 建立儲存空間 (目錄/檔案/資料表)，可重複呼叫。回傳錯誤時啟動必須中止
	Init(ctx context.Context) error
	// Shutdown 寫出尚未保存的資料並釋放連線，Init 失敗後呼叫也必須安全
	Shutdown(ctx context.Context) error
	// HasAccount 帳戶是否存在
	HasAccount(ctx context.Context, id uuid.UUID) (bool, error)
	// Balance 取得餘額，帳戶不存在時回傳 0
	Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	// SetBalance 直接覆寫餘額，帳戶不存在時不做事
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	// AccountName 取得顯示名稱，第二個回傳值表示帳戶是否存在
	AccountName(ctx context.Context, id uuid.UUID) (string, bool, error)
	// SetAccountName 更新顯示名稱，帳戶不存在時不做事
	SetAccountName(ctx context.Context, id uuid.UUID, name string) error
	// CreateAccount 建立帳戶，已存在時回傳 false。同一個 id 併發建立只會有一個成功
	CreateAccount(ctx context.Context, id uuid.UUID, name string, initial decimal.Decimal) (bool, error)
	// DeleteAccount 刪除帳戶，只有真的刪除了紀錄才回傳 true
	DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error)
	// AllBalances 全表快照 (無排序保證)
	AllBalances(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
	// AllAccountIDs 全部帳戶 id (無排序保證)
	AllAccountIDs(ctx context.Context) ([]uuid.UUID, error)
	// Save 強制寫出記憶體中的資料；每次寫入都直接落地的實作為 no-op
	Save(ctx context.Context) error
}

// Journal 轉帳意圖的 Write-Ahead Log
type Journal interface {
	// Write 追加一筆紀錄並 fsync
	Write(v any) error
	// ReadAll 從頭逐筆讀出
	ReadAll(callback func(jsonRaw []byte) error) error
	// Truncate 清空日誌
	Truncate() error
}

// Recorder 帳本操作結果的統計 (由 pkg/metrics 實作)
type Recorder interface {
	ObserveOperation(op string, result string)
	SetAccounts(n int)
}

// 操作結果標籤
const (
	ResultOK           = "ok"
	ResultRejected     = "rejected"
	ResultInvalid      = "invalid"
	ResultInsufficient = "insufficient"
	ResultError        = "error"
)

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string) {}
func (nopRecorder) SetAccounts(int)                 {}
