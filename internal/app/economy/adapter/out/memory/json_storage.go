package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
)

// DataFileName 帳戶文件的檔名
const DataFileName = "accounts.json"

const (
	fileMode fs.FileMode = 0644
	dirMode  fs.FileMode = 0755
)

// record 記憶體中的一筆帳戶
type record struct {
	name    string
	balance decimal.Decimal
}

// fileRecord 文件中的一筆帳戶，balance 以十進位字串保存
type fileRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// JSONStorage 記憶體 Map + 整份 JSON 文件的儲存層
//
// 結構:
//
//	accounts: 全部帳戶資料 (常駐記憶體)
//	mu: RWMutex 保護 accounts 以及文件重寫
//	path: JSON 文件路徑
//
// 每次異動都會重寫整份文件；寫檔失敗時記憶體的異動會還原，
// 回傳錯誤即代表這次異動沒有生效。
type JSONStorage struct {
	path     string
	mu       sync.RWMutex
	accounts map[uuid.UUID]*record
	ready    bool
	log      logrus.FieldLogger
}

// NewJSONStorage 建立 JSONStorage，資料放在 dataDir/accounts.json
//
// 參數:
//
//	dataDir: 資料目錄
//	log: logger (nil 時使用 logrus 標準 logger)
func NewJSONStorage(dataDir string, log logrus.FieldLogger) *JSONStorage {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &JSONStorage{
		path:     filepath.Join(dataDir, DataFileName),
		accounts: make(map[uuid.UUID]*record),
		log:      log.WithField("storage", "json"),
	}
}

// Path 文件路徑
func (s *JSONStorage) Path() string {
	return s.path
}

// Init 載入文件；文件不存在時建立空文件，空白文件視為沒有帳戶
// 文件無法解析時回傳 domain.ErrCorruptDocument，不做部分載入
func (s *JSONStorage) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	content, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.writeLocked(); err != nil {
			return err
		}
		s.ready = true
		s.log.WithField("path", s.path).Info("Created empty JSON storage")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	loaded, err := decodeDocument(content)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	s.accounts = loaded
	s.ready = true
	s.log.WithField("accounts", len(loaded)).Info("Loaded accounts from JSON storage")
	return nil
}

func decodeDocument(content []byte) (map[uuid.UUID]*record, error) {
	out := make(map[uuid.UUID]*record)
	if len(bytes.TrimSpace(content)) == 0 {
		return out, nil
	}
	var rows []fileRecord
	if err := json.Unmarshal(content, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	for i, row := range rows {
		id, err := domain.ParseAccountID(row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrCorruptDocument, i, err)
		}
		balance, err := domain.ParseBalance(row.Balance)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrCorruptDocument, i, err)
		}
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("%w: duplicate account %s", domain.ErrCorruptDocument, id)
		}
		out[id] = &record{name: row.Name, balance: balance}
	}
	return out, nil
}

// Shutdown 寫出目前的資料
func (s *JSONStorage) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	s.ready = false
	return s.writeLocked()
}

func (s *JSONStorage) HasAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok, nil
}

func (s *JSONStorage) Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[id]; ok {
		return acc.balance, nil
	}
	return decimal.Zero, nil
}

func (s *JSONStorage) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil
	}
	old := acc.balance
	acc.balance = balance
	if err := s.persistLocked(); err != nil {
		acc.balance = old
		return err
	}
	return nil
}

func (s *JSONStorage) AccountName(ctx context.Context, id uuid.UUID) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[id]; ok {
		return acc.name, true, nil
	}
	return "", false, nil
}

func (s *JSONStorage) SetAccountName(ctx context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil
	}
	old := acc.name
	acc.name = name
	if err := s.persistLocked(); err != nil {
		acc.name = old
		return err
	}
	return nil
}

// CreateAccount 檢查與插入在同一把鎖內完成，同一個 id 只會成功一次
func (s *JSONStorage) CreateAccount(ctx context.Context, id uuid.UUID, name string, initial decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; ok {
		return false, nil
	}
	s.accounts[id] = &record{name: name, balance: initial}
	if err := s.persistLocked(); err != nil {
		delete(s.accounts, id)
		return false, err
	}
	return true, nil
}

func (s *JSONStorage) DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	delete(s.accounts, id)
	if err := s.persistLocked(); err != nil {
		s.accounts[id] = acc
		return false, err
	}
	return true, nil
}

func (s *JSONStorage) AllBalances(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]decimal.Decimal, len(s.accounts))
	for id, acc := range s.accounts {
		out[id] = acc.balance
	}
	return out, nil
}

func (s *JSONStorage) AllAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(s.accounts))
	for id := range s.accounts {
		out = append(out, id)
	}
	return out, nil
}

// Save 重寫整份文件；尚未 Init (或 Init 失敗) 時不碰檔案
func (s *JSONStorage) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *JSONStorage) persistLocked() error {
	if !s.ready {
		return domain.ErrStorageNotInitialized
	}
	return s.writeLocked()
}

// writeLocked 先寫暫存檔再 rename，避免寫到一半的文件
func (s *JSONStorage) writeLocked() error {
	rows := make([]fileRecord, 0, len(s.accounts))
	for id, acc := range s.accounts {
		rows = append(rows, fileRecord{
			ID:      id.String(),
			Name:    acc.name,
			Balance: domain.PlainString(acc.balance),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

var _ usecase.Storage = (*JSONStorage)(nil)
