package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/adapter/in/httpapi"
	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/usecase"
	"github.com/JoeShih716/go-economy-ledger/internal/config"
	"github.com/JoeShih716/go-economy-ledger/pkg/logging"
	"github.com/JoeShih716/go-economy-ledger/pkg/metrics"
	"github.com/JoeShih716/go-economy-ledger/pkg/wal"
)

func main() {
	configPath := flag.String("config", "", "config file (default $ECONOMY_CONFIG or config/config.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		logrus.WithError(err).Error("economy exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	// 1. 載入設定
	cfg, err := config.Load(configPath, logrus.StandardLogger())
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// 2. 初始化儲存層 (失敗時中止啟動)
	storage, err := config.NewStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := storage.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to shut down storage")
		}
	}()
	if err := storage.Init(ctx); err != nil {
		return fmt.Errorf("init %s storage: %w", cfg.Storage.Type, err)
	}
	log.WithField("type", cfg.Storage.Type).Info("Storage ready")

	// 3. 轉帳 WAL
	journal, err := wal.NewWAL(cfg.Economy.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer journal.Close()

	// 4. 帳本
	defaultBalance, err := cfg.DefaultBalance()
	if err != nil {
		return err
	}
	m := metrics.New("economy")
	ledger, err := usecase.NewLedger(ctx, storage, cfg.CurrencyDef(), defaultBalance,
		usecase.WithJournal(journal),
		usecase.WithMetrics(m),
		usecase.WithLogger(log.WithField("component", "ledger")),
	)
	if err != nil {
		return err
	}

	// 5. 定期存檔
	if cfg.Economy.Autosave != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Economy.Autosave, func() {
			if err := storage.Save(ctx); err != nil {
				log.WithError(err).Error("Autosave failed")
				return
			}
			if err := ledger.CompactJournal(); err != nil {
				log.WithError(err).Warn("Journal compaction skipped")
			}
		})
		if err != nil {
			return fmt.Errorf("economy.autosave %q: %w", cfg.Economy.Autosave, err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		log.WithField("schedule", cfg.Economy.Autosave).Info("Autosave scheduled")
	}

	// 6. 管理 API
	if cfg.HTTP.Addr == "" {
		log.Info("Economy ledger running")
		<-ctx.Done()
		log.Info("Shutting down...")
		return nil
	}
	srv := httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewRouter(ledger, m.Handler(), log))
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("Starting admin HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("admin http: %w", err)
		}
	}
	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown admin http: %w", err)
	}
	log.Info("Server exited")
	return nil
}
