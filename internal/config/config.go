// Package config 載入 YAML 設定檔 (支援 .env 與 ${VAR} 展開) 並選擇儲存引擎
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/pkg/mysql"
	"github.com/JoeShih716/go-economy-ledger/pkg/sqlite"
)

// DefaultPath 預設設定檔路徑
const DefaultPath = "config/config.yaml"

// PathEnv 覆寫設定檔路徑的環境變數
const PathEnv = "ECONOMY_CONFIG"

// StorageType 儲存引擎
type StorageType string

const (
	StorageJSON   StorageType = "json"
	StorageSQLite StorageType = "sqlite"
	StorageMySQL  StorageType = "mysql"
)

// 小數位數上限
const maxFractionDigits = 18

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Currency CurrencyConfig `yaml:"currency"`
	Economy  EconomyConfig  `yaml:"economy"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type LogConfig struct {
	// Level logrus 等級: "debug", "info", "warn", "error"
	Level string `yaml:"level"`
	// Format "text" 或 "json"
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Type    StorageType   `yaml:"type"`
	DataDir string        `yaml:"data_dir"`
	MySQL   mysql.Config  `yaml:"mysql"`
	SQLite  sqlite.Config `yaml:"sqlite"`
}

type CurrencyConfig struct {
	Name           string `yaml:"name"`
	Plural         string `yaml:"plural"`
	Symbol         string `yaml:"symbol"`
	FractionDigits *int32 `yaml:"fraction_digits"`
}

type EconomyConfig struct {
	// DefaultBalance 新帳戶的初始餘額 (十進位字串，避免 YAML 解析成 float)
	DefaultBalance string `yaml:"default_balance"`
	// JournalPath 轉帳 WAL 路徑，空字串時放在 data_dir 底下
	JournalPath string `yaml:"journal_path"`
	// Autosave cron 表達式 (例如 "@every 5m")，空字串代表不排程
	Autosave string `yaml:"autosave"`
}

type HTTPConfig struct {
	// Addr 管理用 HTTP 監聽位址，空字串代表不啟動
	Addr string `yaml:"addr"`
}

// Load 讀取設定檔
//
// 流程: 載入 .env (不存在只記警告) -> 讀檔 -> 展開 ${VAR} -> 解析 -> 補預設值 -> 驗證
//
// 參數:
//
//	path: 設定檔路徑，空字串時使用 ECONOMY_CONFIG 或 DefaultPath
func Load(path string, log logrus.FieldLogger) (*Config, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, relying on system environment variables")
	}
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse 從 YAML 內容建立設定 (會展開環境變數、補預設值並驗證)
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 補全沒有寫在 yaml 的設定
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	c.Storage.Type = StorageType(strings.ToLower(strings.TrimSpace(string(c.Storage.Type))))
	if c.Storage.Type == "" {
		c.Storage.Type = StorageJSON
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = filepath.Join(c.Storage.DataDir, "economy.db")
	}
	c.Storage.MySQL.ApplyDefaults()

	if c.Currency.Name == "" {
		c.Currency.Name = "Coin"
	}
	if c.Currency.Plural == "" {
		c.Currency.Plural = c.Currency.Name + "s"
	}
	if c.Currency.Symbol == "" {
		c.Currency.Symbol = "$"
	}
	if c.Currency.FractionDigits == nil {
		digits := int32(2)
		c.Currency.FractionDigits = &digits
	}

	if c.Economy.DefaultBalance == "" {
		c.Economy.DefaultBalance = "0"
	}
	if c.Economy.JournalPath == "" {
		c.Economy.JournalPath = filepath.Join(c.Storage.DataDir, "transfers.wal")
	}
}

// Validate 檢查設定值
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Type {
	case StorageJSON, StorageSQLite, StorageMySQL:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", domain.ErrUnknownStorageType, c.Storage.Type))
	}
	if d := c.Currency.FractionDigits; d != nil && (*d < 0 || *d > maxFractionDigits) {
		errs = append(errs, fmt.Errorf("currency.fraction_digits must be between 0 and %d, got %d", maxFractionDigits, *d))
	}
	if _, err := c.DefaultBalance(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DefaultBalance 解析 economy.default_balance
func (c *Config) DefaultBalance() (decimal.Decimal, error) {
	d, err := domain.ParseBalance(c.Economy.DefaultBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("economy.default_balance: %w", err)
	}
	return d, nil
}

// CurrencyDef 設定中的唯一貨幣 (即預設貨幣)
func (c *Config) CurrencyDef() domain.Currency {
	var digits int32
	if c.Currency.FractionDigits != nil {
		digits = *c.Currency.FractionDigits
	}
	return domain.NewCurrency(c.Currency.Name, c.Currency.Plural, c.Currency.Symbol, digits, true)
}
