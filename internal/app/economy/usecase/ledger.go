package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
)

// Ledger 帳本：在 Storage 之上維護帳戶快取，負責帳戶生命週期、餘額規則與轉帳
//
// 結構:
//
//	accounts: 帳戶快取 (RWMutex 保護)
//	creating: 同一個 id 的併發建立合併成一次
//	locks: 依帳戶分段的鎖，序列化同一帳戶的餘額異動
//	journal: 轉帳 WAL (可為 nil)
type Ledger struct {
	storage        Storage
	currency       domain.Currency
	defaultBalance decimal.Decimal

	approver Approver
	names    NameResolver
	journal  Journal
	metrics  Recorder
	log      logrus.FieldLogger
	now      func() time.Time

	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account

	creating singleflight.Group
	locks    stripedLocks
	// 餘額異動時持有讀鎖，壓縮日誌時持有寫鎖
	journalMu sync.RWMutex

	// 終結階段寫入日誌失敗的紀錄，在寫入前相關帳戶不可再異動
	unsettledMu sync.Mutex
	unsettled   []*domain.TransferRecord
}

var errSelfTransfer = errors.New("cannot transfer to the same account")

// Option 設定 Ledger 的選項函數
type Option func(*Ledger)

// WithApprover 設定審核者，未設定時一律同意
func WithApprover(a Approver) Option {
	return func(l *Ledger) { l.approver = a }
}

// WithNameResolver 設定首次建立帳戶時的玩家名稱查詢
func WithNameResolver(r NameResolver) Option {
	return func(l *Ledger) { l.names = r }
}

// WithJournal 設定轉帳 WAL
func WithJournal(j Journal) Option {
	return func(l *Ledger) { l.journal = j }
}

// WithMetrics 設定統計
func WithMetrics(r Recorder) Option {
	return func(l *Ledger) {
		if r != nil {
			l.metrics = r
		}
	}
}

// WithLogger 設定 logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLedger 建立帳本，從 Storage 載入所有帳戶 id 並恢復未完成的轉帳
//
// 參數:
//
//	storage: 已 Init 的儲存層
//	currency: 唯一支援的貨幣
//	defaultBalance: 新帳戶的初始餘額
//
// 回傳:
//
//	*Ledger: 帳本
//	error: 載入或恢復失敗
func NewLedger(ctx context.Context, storage Storage, currency domain.Currency, defaultBalance decimal.Decimal, opts ...Option) (*Ledger, error) {
	if defaultBalance.IsNegative() {
		return nil, fmt.Errorf("default balance %s: %w", domain.PlainString(defaultBalance), domain.ErrNegativeBalance)
	}
	l := &Ledger{
		storage:        storage,
		currency:       currency,
		defaultBalance: defaultBalance,
		metrics:        nopRecorder{},
		log:            logrus.StandardLogger(),
		now:            time.Now,
		accounts:       make(map[uuid.UUID]*Account),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.recoverFromJournal(ctx); err != nil {
		return nil, err
	}

	ids, err := storage.AllAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load account ids: %w", err)
	}
	for _, id := range ids {
		l.accounts[id] = newAccount(id, l)
	}
	l.metrics.SetAccounts(len(l.accounts))
	l.log.WithField("accounts", len(l.accounts)).Info("Ledger initialized")
	return l, nil
}

// DefaultCurrency 回傳設定的唯一貨幣
func (l *Ledger) DefaultCurrency() domain.Currency {
	return l.currency
}

// Currency 以名稱 (不分大小寫) 查詢貨幣
func (l *Ledger) Currency(name string) (domain.Currency, bool) {
	if strings.EqualFold(l.currency.Name(), name) {
		return l.currency, true
	}
	return domain.Currency{}, false
}

// Currencies 支援的貨幣 (只有一種)
func (l *Ledger) Currencies() []domain.Currency {
	return []domain.Currency{l.currency}
}

// DefaultBalance 新帳戶的初始餘額
func (l *Ledger) DefaultBalance() decimal.Decimal {
	return l.defaultBalance
}

// HasAccount 直接查詢 Storage
func (l *Ledger) HasAccount(ctx context.Context, id uuid.UUID) bool {
	ok, err := l.storage.HasAccount(ctx, id)
	if err != nil {
		l.storageError(err, "has_account", id)
		return false
	}
	return ok
}

// GetOrCreateAccount 取得帳戶，不存在時建立 (需經過 Approver)
//
// 快取命中直接回傳；Storage 已有紀錄時只做 rehydrate，不觸發審核。
// 審核否決或寫入失敗時回傳 nil, false，且不會動到 Storage 與快取。
func (l *Ledger) GetOrCreateAccount(ctx context.Context, id uuid.UUID) (*Account, bool) {
	if acc, ok := l.cached(id); ok {
		return acc, true
	}
	v, _, _ := l.creating.Do(id.String(), func() (any, error) {
		if acc, ok := l.cached(id); ok {
			return acc, nil
		}
		exists, err := l.storage.HasAccount(ctx, id)
		if err != nil {
			l.storageError(err, "create_account", id)
			return nil, nil
		}
		if exists {
			return l.remember(id), nil
		}

		if !l.approve(ctx, domain.Intent{Kind: domain.IntentCreate, Account: id}) {
			l.metrics.ObserveOperation("create_account", ResultRejected)
			return nil, nil
		}
		name := l.resolveName(ctx, id)
		created, err := l.storage.CreateAccount(ctx, id, name, l.defaultBalance)
		if err != nil {
			l.storageError(err, "create_account", id)
			return nil, nil
		}
		if !created {
			// 其他寫入者已經建立 (例如共用資料庫)，當作 rehydrate
			l.log.WithField("account", id).Debug("account created concurrently, reusing stored record")
			return l.remember(id), nil
		}
		acc := l.remember(id)
		l.metrics.ObserveOperation("create_account", ResultOK)
		l.log.WithFields(logrus.Fields{
			"account": id,
			"name":    name,
			"balance": domain.PlainString(l.defaultBalance),
		}).Info("Created new account")
		return acc, nil
	})
	acc, _ := v.(*Account)
	return acc, acc != nil
}

// Account 只查詢不建立 (快取或 Storage)
func (l *Ledger) Account(ctx context.Context, id uuid.UUID) (*Account, bool) {
	if acc, ok := l.cached(id); ok {
		return acc, true
	}
	exists, err := l.storage.HasAccount(ctx, id)
	if err != nil {
		l.storageError(err, "get_account", id)
		return nil, false
	}
	if !exists {
		return nil, false
	}
	return l.remember(id), true
}

// Accounts 快取中所有帳戶，依 id 排序
func (l *Ledger) Accounts() []*Account {
	l.mu.RLock()
	out := make([]*Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		out = append(out, acc)
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].id, out[j].id) })
	return out
}

// Balance 讀取帳戶目前的餘額，讀取失敗時回傳 0 (錯誤只記錄在 log)
func (l *Ledger) Balance(ctx context.Context, acc *Account, currency domain.Currency) decimal.Decimal {
	l.checkCurrency(currency)
	if acc == nil {
		return decimal.Zero
	}
	bal, err := l.storage.Balance(ctx, acc.id)
	if err != nil {
		l.storageError(err, "get_balance", acc.id)
		return decimal.Zero
	}
	return bal
}

// SetBalance 直接設定餘額
//
// 負數直接拒絕；Approver 會收到 (舊餘額, 新餘額) 並可否決。
func (l *Ledger) SetBalance(ctx context.Context, acc *Account, currency domain.Currency, amount decimal.Decimal) bool {
	const op = "set_balance"
	l.checkCurrency(currency)
	if acc == nil {
		return l.reject(op, ResultInvalid, domain.ErrAccountNotFound)
	}
	if amount.IsNegative() {
		return l.reject(op, ResultInvalid, domain.ErrNegativeBalance, acc.id)
	}
	unlock := l.lockForWrite(acc.id)
	defer unlock()
	if !l.guard(ctx, op, acc.id) {
		return false
	}

	old, err := l.storage.Balance(ctx, acc.id)
	if err != nil {
		l.storageError(err, op, acc.id)
		return false
	}
	return l.writeBalance(ctx, op, acc.id, old, amount)
}

// Deposit 存款 (增加餘額)，amount 必須為正數
func (l *Ledger) Deposit(ctx context.Context, acc *Account, currency domain.Currency, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return l.reject("deposit", ResultInvalid, domain.ErrAmountMustBePositive)
	}
	return l.adjust(ctx, "deposit", acc, currency, amount)
}

// Withdraw 提款 (扣除餘額)，amount 必須為正數，餘額不足時拒絕
func (l *Ledger) Withdraw(ctx context.Context, acc *Account, currency domain.Currency, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return l.reject("withdraw", ResultInvalid, domain.ErrAmountMustBePositive)
	}
	return l.adjust(ctx, "withdraw", acc, currency, amount.Neg())
}

// adjust 以差額修改餘額，delta 為負數時代表扣款
func (l *Ledger) adjust(ctx context.Context, op string, acc *Account, currency domain.Currency, delta decimal.Decimal) bool {
	l.checkCurrency(currency)
	if acc == nil {
		return l.reject(op, ResultInvalid, domain.ErrAccountNotFound)
	}
	unlock := l.lockForWrite(acc.id)
	defer unlock()
	if !l.guard(ctx, op, acc.id) {
		return false
	}

	old, err := l.storage.Balance(ctx, acc.id)
	if err != nil {
		l.storageError(err, op, acc.id)
		return false
	}
	next := old.Add(delta)
	if next.IsNegative() {
		return l.reject(op, ResultInsufficient, domain.ErrInsufficientBalance, acc.id)
	}
	return l.writeBalance(ctx, op, acc.id, old, next)
}

// writeBalance 審核後寫入 (呼叫端需持有 lockForWrite)
func (l *Ledger) writeBalance(ctx context.Context, op string, id uuid.UUID, old, next decimal.Decimal) bool {
	intent := domain.Intent{Kind: domain.IntentBalanceChange, Account: id, Old: old, New: next}
	if !l.approve(ctx, intent) {
		l.metrics.ObserveOperation(op, ResultRejected)
		return false
	}
	if err := l.storage.SetBalance(ctx, id, next); err != nil {
		l.storageError(err, op, id)
		return false
	}
	l.metrics.ObserveOperation(op, ResultOK)
	return true
}

// lockForWrite 餘額異動的鎖: 帳戶分段鎖 + 日誌讀鎖 (CompactJournal 持有寫鎖)
func (l *Ledger) lockForWrite(ids ...uuid.UUID) (unlock func()) {
	unlockAccounts := l.locks.lock(ids...)
	l.journalMu.RLock()
	return func() {
		l.journalMu.RUnlock()
		unlockAccounts()
	}
}

// guard 異動前的檢查 (呼叫端需持有 lockForWrite)
//
//	帳戶必須仍存在 (handle 可能在 DeleteAccount 之後還被持有)
//	帳戶不可牽涉終結階段尚未寫入日誌的轉帳，否則重啟後的恢復會誤判
func (l *Ledger) guard(ctx context.Context, op string, ids ...uuid.UUID) bool {
	for _, id := range ids {
		exists, err := l.storage.HasAccount(ctx, id)
		if err != nil {
			l.storageError(err, op, id)
			return false
		}
		if !exists {
			return l.reject(op, ResultInvalid, domain.ErrAccountNotFound, id)
		}
	}
	if !l.settle(ids...) {
		return l.reject(op, ResultError, domain.ErrJournalWriteFailed, ids...)
	}
	return true
}

// Transfer 轉帳
//
// 流程: 檢查金額 -> 鎖定兩個帳戶 -> 確認兩邊帳戶存在 -> 讀取即時餘額並檢查是否足夠 -> 審核
// -> 寫入 WAL(begin) -> 扣款 -> 入帳 -> WAL(commit)
//
// 入帳失敗時會把扣款補償回原本餘額並寫入 rollback，兩邊餘額維持不變；
// 補償也失敗時 begin 紀錄保留，下次啟動由 recoverFromJournal 處理。
func (l *Ledger) Transfer(ctx context.Context, from, to *Account, currency domain.Currency, amount decimal.Decimal) bool {
	const op = "transfer"
	l.checkCurrency(currency)
	if from == nil || to == nil {
		return l.reject(op, ResultInvalid, domain.ErrAccountNotFound)
	}
	if from.id == to.id {
		return l.reject(op, ResultInvalid, errSelfTransfer, from.id)
	}
	if !amount.IsPositive() {
		return l.reject(op, ResultInvalid, domain.ErrAmountMustBePositive, from.id, to.id)
	}
	unlock := l.lockForWrite(from.id, to.id)
	defer unlock()
	if !l.guard(ctx, op, from.id, to.id) {
		return false
	}

	fromBalance, err := l.storage.Balance(ctx, from.id)
	if err != nil {
		l.storageError(err, op, from.id)
		return false
	}
	if fromBalance.LessThan(amount) {
		return l.reject(op, ResultInsufficient, domain.ErrInsufficientBalance, from.id)
	}
	toBalance, err := l.storage.Balance(ctx, to.id)
	if err != nil {
		l.storageError(err, op, to.id)
		return false
	}

	intent := domain.Intent{Kind: domain.IntentTransfer, Account: from.id, Counterparty: to.id, Amount: amount}
	if !l.approve(ctx, intent) {
		l.metrics.ObserveOperation(op, ResultRejected)
		return false
	}

	rec := domain.NewTransferBegin(from.id, to.id, amount, fromBalance, toBalance, l.now().UnixNano())
	log := l.log.WithFields(logrus.Fields{"transfer": rec.ID, "from": from.id, "to": to.id, "amount": rec.Amount})
	if l.journal != nil {
		if err := l.journal.Write(rec); err != nil {
			log.WithError(err).Error("failed to journal transfer")
			l.metrics.ObserveOperation(op, ResultError)
			return false
		}
	}

	if err := l.storage.SetBalance(ctx, from.id, fromBalance.Sub(amount)); err != nil {
		log.WithError(err).Error("transfer debit failed")
		l.appendPhase(log, rec, domain.TransferPhaseAbort)
		l.metrics.ObserveOperation(op, ResultError)
		return false
	}
	if err := l.storage.SetBalance(ctx, to.id, toBalance.Add(amount)); err != nil {
		log.WithError(err).Error("transfer credit failed, compensating debit")
		if cerr := l.storage.SetBalance(ctx, from.id, fromBalance); cerr != nil {
			log.WithError(cerr).Error("transfer compensation failed, left pending in journal")
			l.metrics.ObserveOperation(op, ResultError)
			return false
		}
		l.appendPhase(log, rec, domain.TransferPhaseRollback)
		l.metrics.ObserveOperation(op, ResultError)
		return false
	}
	l.appendPhase(log, rec, domain.TransferPhaseCommit)
	l.metrics.ObserveOperation(op, ResultOK)
	return true
}

// appendPhase 寫入終結階段；失敗時記在 unsettled，下一次異動或壓縮日誌前重試
func (l *Ledger) appendPhase(log logrus.FieldLogger, rec *domain.TransferRecord, phase domain.TransferPhase) {
	if l.journal == nil {
		return
	}
	next := rec.WithPhase(phase, l.now().UnixNano())
	if err := l.journal.Write(next); err != nil {
		log.WithError(err).WithField("phase", phase).Warn("failed to journal transfer phase, will retry")
		l.unsettledMu.Lock()
		l.unsettled = append(l.unsettled, next)
		l.unsettledMu.Unlock()
	}
}

// settle 重試 unsettled 的紀錄 (呼叫端需持有 journalMu)
// 回傳 ids 是否都沒有牽涉仍未寫入的紀錄；不帶 ids 時回傳是否全部寫入
func (l *Ledger) settle(ids ...uuid.UUID) bool {
	l.unsettledMu.Lock()
	defer l.unsettledMu.Unlock()
	for len(l.unsettled) > 0 {
		if err := l.journal.Write(l.unsettled[0]); err != nil {
			l.log.WithError(err).WithField("transfer", l.unsettled[0].ID).Warn("journal phase retry failed")
			break
		}
		l.unsettled = l.unsettled[1:]
	}
	if len(ids) == 0 {
		return len(l.unsettled) == 0
	}
	for _, rec := range l.unsettled {
		for _, id := range ids {
			if rec.From == id || rec.To == id {
				return false
			}
		}
	}
	return true
}

// DeleteAccount 刪除帳戶 (需經過 Approver)
//
// 先移出快取再刪除 Storage；Storage 回傳錯誤時放回快取。
func (l *Ledger) DeleteAccount(ctx context.Context, id uuid.UUID) bool {
	const op = "delete_account"
	acc, ok := l.cached(id)
	if !ok {
		l.metrics.ObserveOperation(op, ResultInvalid)
		return false
	}
	if !l.approve(ctx, domain.Intent{Kind: domain.IntentDelete, Account: id}) {
		l.metrics.ObserveOperation(op, ResultRejected)
		return false
	}
	unlock := l.locks.lock(id)
	defer unlock()

	l.forget(id)
	deleted, err := l.storage.DeleteAccount(ctx, id)
	if err != nil {
		l.storageError(err, op, id)
		l.mu.Lock()
		l.accounts[id] = acc
		l.mu.Unlock()
		return false
	}
	if deleted {
		l.metrics.ObserveOperation(op, ResultOK)
		l.log.WithField("account", id).Info("Deleted account")
	}
	return deleted
}

// UpdateAccountName 更新顯示名稱 (例如玩家重新連線)，不經過審核
// 只在 Storage 的帳戶會先放回快取；完全不存在的帳戶略過
func (l *Ledger) UpdateAccountName(ctx context.Context, id uuid.UUID, name string) {
	if _, ok := l.Account(ctx, id); !ok {
		return
	}
	if err := l.storage.SetAccountName(ctx, id, name); err != nil {
		l.storageError(err, "update_name", id)
	}
}

// Ranking 排行榜的一列
type Ranking struct {
	Account *Account
	Balance decimal.Decimal
}

// Leaderboard 依餘額由大到小排序，同額時依 id 字典序
func (l *Ledger) Leaderboard(ctx context.Context, limit int) []Ranking {
	if limit <= 0 {
		return nil
	}
	balances, err := l.storage.AllBalances(ctx)
	if err != nil {
		l.storageError(err, "top_accounts", uuid.Nil)
		return nil
	}
	accounts := l.Accounts()
	rows := make([]Ranking, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, Ranking{Account: acc, Balance: balances[acc.id]})
	}
	// accounts 已依 id 排序，stable sort 即可保留同額時的 id 順序
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Balance.GreaterThan(rows[j].Balance)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// TopAccounts 餘額最高的前 limit 個帳戶
func (l *Ledger) TopAccounts(ctx context.Context, limit int) []*Account {
	rows := l.Leaderboard(ctx, limit)
	out := make([]*Account, len(rows))
	for i, row := range rows {
		out[i] = row.Account
	}
	return out
}

// AccountByName 以名稱 (不分大小寫) 找帳戶，依 id 順序取第一個符合者
func (l *Ledger) AccountByName(ctx context.Context, name string) (*Account, bool) {
	for _, acc := range l.Accounts() {
		if strings.EqualFold(acc.Name(ctx), name) {
			return acc, true
		}
	}
	return nil, false
}

// CompactJournal 沒有未完成的轉帳時清空 WAL
func (l *Ledger) CompactJournal() error {
	if l.journal == nil {
		return nil
	}
	l.journalMu.Lock()
	defer l.journalMu.Unlock()

	if !l.settle() {
		return domain.ErrJournalWriteFailed
	}
	pending, err := l.pendingTransfers()
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("journal has %d pending transfers", len(pending))
	}
	return l.journal.Truncate()
}

// pendingTransfers 讀出沒有終結階段的 begin 紀錄 (依寫入順序)
func (l *Ledger) pendingTransfers() ([]*domain.TransferRecord, error) {
	var order []uuid.UUID
	begins := make(map[uuid.UUID]*domain.TransferRecord)
	err := l.journal.ReadAll(func(jsonRaw []byte) error {
		rec, err := domain.DecodeTransferRecord(jsonRaw)
		if err != nil {
			return fmt.Errorf("decode journal: %w", err)
		}
		switch {
		case rec.Phase == domain.TransferPhaseBegin:
			begins[rec.ID] = rec
			order = append(order, rec.ID)
		case rec.Phase.Terminal():
			delete(begins, rec.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.TransferRecord, 0, len(begins))
	for _, id := range order {
		if rec, ok := begins[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// recoverFromJournal 處理上次未完成的轉帳 (只在 NewLedger 呼叫，單執行緒)
//
// 依 Storage 目前的餘額判斷每一邊是否已寫入:
//
//	兩邊都已寫入 -> commit
//	兩邊都未寫入 -> abort
//	只寫入一邊   -> 把已寫入的一邊還原成轉帳前餘額 -> rollback
//	餘額與轉帳前後都對不上 -> 保留紀錄，交由人工處理
func (l *Ledger) recoverFromJournal(ctx context.Context) error {
	if l.journal == nil {
		return nil
	}
	pending, err := l.pendingTransfers()
	if err != nil {
		return err
	}
	unresolved := 0
	for _, rec := range pending {
		phase, err := l.recoverTransfer(ctx, rec)
		if err != nil {
			return err
		}
		log := l.log.WithFields(logrus.Fields{"transfer": rec.ID, "from": rec.From, "to": rec.To})
		if phase == "" {
			unresolved++
			log.Error("transfer balances diverged since journal entry, leaving it pending")
			continue
		}
		if err := l.journal.Write(rec.WithPhase(phase, l.now().UnixNano())); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrJournalWriteFailed, err)
		}
		log.WithField("phase", phase).Warn("Recovered pending transfer")
	}
	if unresolved > 0 {
		return nil
	}
	return l.journal.Truncate()
}

func (l *Ledger) recoverTransfer(ctx context.Context, rec *domain.TransferRecord) (domain.TransferPhase, error) {
	amount, fromBefore, toBefore, err := rec.Values()
	if err != nil {
		return "", err
	}
	fromNow, err := l.storage.Balance(ctx, rec.From)
	if err != nil {
		return "", fmt.Errorf("recover transfer %s: %w", rec.ID, err)
	}
	toNow, err := l.storage.Balance(ctx, rec.To)
	if err != nil {
		return "", fmt.Errorf("recover transfer %s: %w", rec.ID, err)
	}
	fromAfter, toAfter := fromBefore.Sub(amount), toBefore.Add(amount)

	debited, fromUntouched := fromNow.Equal(fromAfter), fromNow.Equal(fromBefore)
	credited, toUntouched := toNow.Equal(toAfter), toNow.Equal(toBefore)
	switch {
	case (!debited && !fromUntouched) || (!credited && !toUntouched):
		return "", nil
	case debited && credited:
		return domain.TransferPhaseCommit, nil
	case fromUntouched && toUntouched:
		return domain.TransferPhaseAbort, nil
	}
	if debited {
		if err := l.storage.SetBalance(ctx, rec.From, fromBefore); err != nil {
			return "", fmt.Errorf("recover transfer %s: %w", rec.ID, err)
		}
	}
	if credited {
		if err := l.storage.SetBalance(ctx, rec.To, toBefore); err != nil {
			return "", fmt.Errorf("recover transfer %s: %w", rec.ID, err)
		}
	}
	return domain.TransferPhaseRollback, nil
}

func (l *Ledger) cached(id uuid.UUID) (*Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.accounts[id]
	return acc, ok
}

// remember 放入快取，已存在時回傳既有的物件
func (l *Ledger) remember(id uuid.UUID) *Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[id]; ok {
		return acc
	}
	acc := newAccount(id, l)
	l.accounts[id] = acc
	l.metrics.SetAccounts(len(l.accounts))
	return acc
}

func (l *Ledger) forget(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, id)
	l.metrics.SetAccounts(len(l.accounts))
}

func (l *Ledger) approve(ctx context.Context, intent domain.Intent) bool {
	if l.approver == nil {
		return true
	}
	if l.approver.Approve(ctx, intent) {
		return true
	}
	l.log.WithFields(logrus.Fields{"intent": intent.Kind, "account": intent.Account}).Debug("operation vetoed by approver")
	return false
}

func (l *Ledger) resolveName(ctx context.Context, id uuid.UUID) string {
	if l.names != nil {
		if name, ok := l.names.ResolveName(ctx, id); ok && name != "" {
			return name
		}
	}
	return id.String()
}

// checkCurrency 單一貨幣設計：傳入其他貨幣時一律視為預設貨幣
func (l *Ledger) checkCurrency(c domain.Currency) {
	if c.Name() != "" && !c.Matches(l.currency) {
		l.log.WithField("currency", c.Name()).Debug("unknown currency, using default")
	}
}

// reject 記錄一次被拒絕的操作，固定回傳 false
func (l *Ledger) reject(op, result string, err error, ids ...uuid.UUID) bool {
	l.metrics.ObserveOperation(op, result)
	l.log.WithError(err).WithFields(logrus.Fields{"op": op, "accounts": ids}).Debug("operation rejected")
	return false
}

func (l *Ledger) storageError(err error, op string, id uuid.UUID) {
	l.metrics.ObserveOperation(op, ResultError)
	l.log.WithError(err).WithFields(logrus.Fields{"op": op, "account": id}).Error("storage operation failed")
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
