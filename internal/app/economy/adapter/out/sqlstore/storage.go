// Package sqlstore 關聯式資料庫的 Storage 實作 (SQLite / MySQL 共用同一組語句)
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
	"github.com/JoeShih716/go-economy-ledger/pkg/mysql"
	"github.com/JoeShih716/go-economy-ledger/pkg/sqlite"
)

// TableName 帳戶資料表名稱
const TableName = "accounts"

// sqlAccount 對應資料庫的 accounts 表
// balance 以十進位字串保存，不使用 DECIMAL/DOUBLE 欄位以免精度損失
type sqlAccount struct {
	ID      string `gorm:"column:id;primaryKey"`
	Name    string `gorm:"column:name"`
	Balance string `gorm:"column:balance"`
}

func (*sqlAccount) TableName() string {
	return TableName
}

// Dialect 各資料庫引擎的差異 (只有名稱與欄位型別)
type Dialect struct {
	Name           string
	CreateTableSQL string
}

var (
	// SQLite 使用 TEXT 欄位
	SQLite = Dialect{
		Name: "SQLite",
		CreateTableSQL: `CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	balance TEXT NOT NULL
)`,
	}
	// MySQL 使用 VARCHAR 欄位
	MySQL = Dialect{
		Name: "MySQL",
		CreateTableSQL: `CREATE TABLE IF NOT EXISTS accounts (
	id VARCHAR(36) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	balance VARCHAR(255) NOT NULL
)`,
	}
)

// Client pkg/mysql 與 pkg/sqlite 的共同介面
type Client interface {
	DB() *gorm.DB
	Close() error
}

// Opener 在 Init 時建立連線
type Opener func(ctx context.Context) (Client, error)

// Storage GORM 實作的 Storage，每個操作都是單一 statement (autocommit)
type Storage struct {
	dialect Dialect
	open    Opener
	client  Client
	log     logrus.FieldLogger
}

// New 建立 Storage，連線延後到 Init
func New(dialect Dialect, open Opener, log logrus.FieldLogger) *Storage {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Storage{
		dialect: dialect,
		open:    open,
		log:     log.WithField("storage", dialect.Name),
	}
}

// NewSQLite 內嵌 SQLite 檔案
func NewSQLite(cfg sqlite.Config, log logrus.FieldLogger) *Storage {
	return New(SQLite, func(context.Context) (Client, error) {
		return sqlite.NewClient(cfg)
	}, log)
}

// NewMySQL MySQL 伺服器
func NewMySQL(cfg mysql.Config, log logrus.FieldLogger) *Storage {
	return New(MySQL, func(context.Context) (Client, error) {
		return mysql.NewClient(cfg)
	}, log)
}

// Init 建立連線與資料表 (CREATE TABLE IF NOT EXISTS，可重複呼叫)
func (s *Storage) Init(ctx context.Context) error {
	if s.client == nil {
		client, err := s.open(ctx)
		if err != nil {
			return fmt.Errorf("open %s: %w", s.dialect.Name, err)
		}
		s.client = client
	}
	if err := s.client.DB().WithContext(ctx).Exec(s.dialect.CreateTableSQL).Error; err != nil {
		return fmt.Errorf("create %s table: %w", s.dialect.Name, err)
	}
	s.log.Info("SQL storage initialized")
	return nil
}

// Shutdown 關閉連線，Init 失敗 (沒有連線) 時直接回傳
func (s *Storage) Shutdown(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", s.dialect.Name, err)
	}
	return nil
}

func (s *Storage) db(ctx context.Context) (*gorm.DB, error) {
	if s.client == nil {
		return nil, domain.ErrStorageNotInitialized
	}
	return s.client.DB().WithContext(ctx), nil
}

func (s *Storage) HasAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}
	var n int64
	if err := db.Model(&sqlAccount{}).Where("id = ?", id.String()).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check account %s: %w", id, err)
	}
	return n > 0, nil
}

// find 讀取單一欄位，找不到時回傳 ok=false
func (s *Storage) find(ctx context.Context, id uuid.UUID, column string) (sqlAccount, bool, error) {
	var row sqlAccount
	db, err := s.db(ctx)
	if err != nil {
		return row, false, err
	}
	err = db.Select(column).Where("id = ?", id.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, false, nil
	}
	if err != nil {
		return row, false, fmt.Errorf("select %s of %s: %w", column, id, err)
	}
	return row, true, nil
}

func (s *Storage) Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	row, ok, err := s.find(ctx, id, "balance")
	if err != nil || !ok {
		return decimal.Zero, err
	}
	balance, err := domain.ParseBalance(row.Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account %s: %w", id, err)
	}
	return balance, nil
}

func (s *Storage) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return s.update(ctx, id, "balance", domain.PlainString(balance))
}

func (s *Storage) AccountName(ctx context.Context, id uuid.UUID) (string, bool, error) {
	row, ok, err := s.find(ctx, id, "name")
	return row.Name, ok, err
}

func (s *Storage) SetAccountName(ctx context.Context, id uuid.UUID, name string) error {
	return s.update(ctx, id, "name", name)
}

// update 不存在的帳戶影響 0 列，視為 no-op
func (s *Storage) update(ctx context.Context, id uuid.UUID, column string, value string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if err := db.Model(&sqlAccount{}).Where("id = ?", id.String()).Update(column, value).Error; err != nil {
		return fmt.Errorf("update %s of %s: %w", column, id, err)
	}
	return nil
}

// CreateAccount 插入前再檢查一次；併發插入時由主鍵保證只有一筆成功
func (s *Storage) CreateAccount(ctx context.Context, id uuid.UUID, name string, initial decimal.Decimal) (bool, error) {
	exists, err := s.HasAccount(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}
	row := sqlAccount{ID: id.String(), Name: name, Balance: domain.PlainString(initial)}
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		// 不是每個 driver 都會翻譯錯誤，再查一次確認是否被搶先建立
		if again, herr := s.HasAccount(ctx, id); herr == nil && again {
			return false, nil
		}
		return false, fmt.Errorf("insert account %s: %w", id, err)
	}
	return true, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}
	res := db.Where("id = ?", id.String()).Delete(&sqlAccount{})
	if res.Error != nil {
		return false, fmt.Errorf("delete account %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Storage) AllBalances(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []sqlAccount
	if err := db.Select("id", "balance").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		id, err := domain.ParseAccountID(row.ID)
		if err != nil {
			return nil, err
		}
		balance, err := domain.ParseBalance(row.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", row.ID, err)
		}
		out[id] = balance
	}
	return out, nil
}

func (s *Storage) AllAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := db.Model(&sqlAccount{}).Pluck("id", &raw).Error; err != nil {
		return nil, fmt.Errorf("select account ids: %w", err)
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := domain.ParseAccountID(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Save 每次寫入都已 autocommit，不需要做事
func (s *Storage) Save(ctx context.Context) error {
	return nil
}

var _ usecase.Storage = (*Storage)(nil)
