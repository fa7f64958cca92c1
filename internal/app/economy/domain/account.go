package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParseAccountID 解析 36 字元的 UUID 字串
func ParseAccountID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidAccountID, s)
	}
	return id, nil
}

// ParseBalance 解析持久化的十進位字串，拒絕負數
func ParseBalance(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidBalance, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNegativeBalance, s)
	}
	return d, nil
}

// PlainString 以不含指數的形式輸出 decimal，並保留原本的小數位數
//
// decimal.String() 會去掉尾端的 0 (123.456700 -> 123.4567)，
// 持久化時必須保留 scale 才能做到 save/load 完全一致。
func PlainString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(0)
}
