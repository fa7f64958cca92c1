package mysql

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-economy-ledger/pkg/logging"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 建立並回傳一個新的 MySQL 客戶端實例 (GORM)
//
// 參數:
//
//	cfg: Config - MySQL 連線配置
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	gormConfig := &gorm.Config{
		// 帳本每次寫入都是單一 statement，不需要 GORM 預設的 transaction
		SkipDefaultTransaction: true,
		// 主鍵衝突轉成 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logging.NewGormLogger(cfg.LogLevel, nil),
	}

	db, err := connect(cfg, func() (*gorm.DB, error) {
		return gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	})
	if err != nil {
		return nil, err
	}

	return newClient(db, cfg)
}

// connect 連線並 ping，失敗時重試 cfg.ConnectRetries 次
// ping 失敗的連線池會先關閉再重試
func connect(cfg Config, open func() (*gorm.DB, error)) (*gorm.DB, error) {
	var err error
	for i := 0; i < cfg.ConnectRetries; i++ {
		var db *gorm.DB
		db, err = open()
		if err == nil {
			if err = ping(db); err == nil {
				return db, nil
			}
		}

		if i < cfg.ConnectRetries-1 {
			logrus.WithError(err).Warnf("Failed to connect to MySQL (attempt %d/%d). Retrying in %v...", i+1, cfg.ConnectRetries, cfg.RetryInterval)
			time.Sleep(cfg.RetryInterval)
		}
	}
	return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", cfg.ConnectRetries, err)
}

func ping(db *gorm.DB) error {
	rawDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := rawDB.Ping(); err != nil {
		_ = rawDB.Close()
		return err
	}
	return nil
}

// NewClientFromDB 包裝已開啟的 GORM 連線 (測試或自訂 dialector 使用)
func NewClientFromDB(db *gorm.DB) *Client {
	return &Client{db: db}
}

func newClient(db *gorm.DB, cfg Config) (*Client, error) {
	// 取得底層 sql.DB 物件以設定連線池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Client{db: db}, nil
}

// DB 回傳底層的 *gorm.DB 實例，供業務邏輯層使用
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
