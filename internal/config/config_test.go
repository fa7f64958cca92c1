package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/adapter/out/memory"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/adapter/out/sqlstore"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, StorageJSON, cfg.Storage.Type)
	assert.Equal(t, filepath.Join("data", "economy.db"), cfg.Storage.SQLite.Path)
	assert.Equal(t, filepath.Join("data", "transfers.wal"), cfg.Economy.JournalPath)
	assert.Equal(t, 3306, cfg.Storage.MySQL.Port)

	cur := cfg.CurrencyDef()
	assert.Equal(t, "Coin", cur.Name())
	assert.Equal(t, "Coins", cur.PluralName())
	assert.Equal(t, int32(2), cur.FractionDigits())
	assert.True(t, cur.IsDefault())

	balance, err := cfg.DefaultBalance()
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestParse_FullDocument(t *testing.T) {
	t.Setenv("TEST_MYSQL_PASSWORD", "s3cret")
	doc := `
log:
  level: debug
  format: json
storage:
  type: MySQL
  data_dir: /var/lib/economy
  mysql:
    host: db
    user: economy
    password: ${TEST_MYSQL_PASSWORD}
    db_name: economy
    conn_max_lifetime: 5m
currency:
  name: Gem
  plural: Gems
  symbol: "G "
  fraction_digits: 0
economy:
  default_balance: "100.50"
  autosave: "@every 1m"
http:
  addr: ":9090"
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, StorageMySQL, cfg.Storage.Type)
	assert.Equal(t, "s3cret", cfg.Storage.MySQL.Password)
	assert.Equal(t, 5*time.Minute, cfg.Storage.MySQL.ConnMaxLifetime)
	assert.Equal(t, "/var/lib/economy/transfers.wal", cfg.Economy.JournalPath)
	assert.Equal(t, "@every 1m", cfg.Economy.Autosave)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, int32(0), cfg.CurrencyDef().FractionDigits())

	balance, err := cfg.DefaultBalance()
	require.NoError(t, err)
	assert.Equal(t, "100.50", domain.PlainString(balance))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "unknown storage", doc: "storage: {type: h2}", wantErr: domain.ErrUnknownStorageType},
		{name: "negative default balance", doc: `economy: {default_balance: "-5"}`, wantErr: domain.ErrNegativeBalance},
		{name: "non numeric default balance", doc: `economy: {default_balance: "lots"}`, wantErr: domain.ErrInvalidBalance},
		{name: "fraction digits too large", doc: "currency: {fraction_digits: 19}"},
		{name: "negative fraction digits", doc: "currency: {fraction_digits: -1}"},
		{name: "broken yaml", doc: "storage: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	log, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: {type: sqlite}\n"), 0o644))

	cfg, err := Load(path, log)
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)

	t.Setenv(PathEnv, path)
	cfg, err = Load("", log)
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), log)
	assert.Error(t, err)
}

func TestNewStorage(t *testing.T) {
	log, _ := test.NewNullLogger()
	dir := t.TempDir()

	s, err := NewStorage(StorageConfig{Type: StorageJSON, DataDir: dir}, log)
	require.NoError(t, err)
	assert.IsType(t, &memory.JSONStorage{}, s)

	s, err = NewStorage(StorageConfig{Type: StorageSQLite}, log)
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Storage{}, s)

	s, err = NewStorage(StorageConfig{Type: StorageMySQL}, log)
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Storage{}, s)

	_, err = NewStorage(StorageConfig{Type: "h2"}, log)
	assert.ErrorIs(t, err, domain.ErrUnknownStorageType)
}
