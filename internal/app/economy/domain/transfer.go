package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferPhase 轉帳日誌的階段
type TransferPhase string

const (
	// 已寫入意圖，尚未扣款
	TransferPhaseBegin TransferPhase = "begin"
	// 扣款與入帳皆完成
	TransferPhaseCommit TransferPhase = "commit"
	// 扣款失敗，沒有任何異動
	TransferPhaseAbort TransferPhase = "abort"
	// 已補償回原本餘額
	TransferPhaseRollback TransferPhase = "rollback"
)

// Terminal 是否為終結階段
func (p TransferPhase) Terminal() bool {
	return p == TransferPhaseCommit || p == TransferPhaseAbort || p == TransferPhaseRollback
}

// TransferRecord 一筆轉帳在 WAL 中的紀錄
// FromBefore/ToBefore 是轉帳開始時讀到的餘額，用於補償與重啟後的恢復
type TransferRecord struct {
	ID         uuid.UUID     `json:"id"`
	Phase      TransferPhase `json:"phase"`
	From       uuid.UUID     `json:"from"`
	To         uuid.UUID     `json:"to"`
	Amount     string        `json:"amount,omitempty"`
	FromBefore string        `json:"from_before,omitempty"`
	ToBefore   string        `json:"to_before,omitempty"`
	CreatedAt  int64         `json:"created_at"`
}

// NewTransferBegin 建立 begin 階段的紀錄
func NewTransferBegin(from, to uuid.UUID, amount, fromBefore, toBefore decimal.Decimal, now int64) *TransferRecord {
	return &TransferRecord{
		ID:         uuid.New(),
		Phase:      TransferPhaseBegin,
		From:       from,
		To:         to,
		Amount:     PlainString(amount),
		FromBefore: PlainString(fromBefore),
		ToBefore:   PlainString(toBefore),
		CreatedAt:  now,
	}
}

// WithPhase 複製一份只帶狀態的後續紀錄
func (r *TransferRecord) WithPhase(phase TransferPhase, now int64) *TransferRecord {
	return &TransferRecord{
		ID:        r.ID,
		Phase:     phase,
		From:      r.From,
		To:        r.To,
		CreatedAt: now,
	}
}

// Values 解析轉帳金額與轉帳前的兩邊餘額
func (r *TransferRecord) Values() (amount, fromBefore, toBefore decimal.Decimal, err error) {
	amount, err = ParseBalance(r.Amount)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("transfer %s amount: %w", r.ID, err)
	}
	fromBefore, err = ParseBalance(r.FromBefore)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("transfer %s from_before: %w", r.ID, err)
	}
	toBefore, err = ParseBalance(r.ToBefore)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("transfer %s to_before: %w", r.ID, err)
	}
	return amount, fromBefore, toBefore, nil
}

// DecodeTransferRecord 從 WAL 的單行 JSON 解析
func DecodeTransferRecord(raw []byte) (*TransferRecord, error) {
	var rec TransferRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
