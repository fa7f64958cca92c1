package config

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/adapter/out/memory"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/adapter/out/sqlstore"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
)

// NewStorage 依 storage.type 建立尚未 Init 的 Storage
func NewStorage(cfg StorageConfig, log logrus.FieldLogger) (usecase.Storage, error) {
	switch cfg.Type {
	case StorageJSON:
		return memory.NewJSONStorage(cfg.DataDir, log), nil
	case StorageSQLite:
		return sqlstore.NewSQLite(cfg.SQLite, log), nil
	case StorageMySQL:
		return sqlstore.NewMySQL(cfg.MySQL, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStorageType, cfg.Type)
	}
}
