package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency 貨幣描述，只用於顯示格式化，建立後不可變更
type Currency struct {
	name           string
	pluralName     string
	symbol         string
	fractionDigits int32
	isDefault      bool
}

// NewCurrency 建立貨幣描述
func NewCurrency(name, pluralName, symbol string, fractionDigits int32, isDefault bool) Currency {
	return Currency{
		name:           name,
		pluralName:     pluralName,
		symbol:         symbol,
		fractionDigits: fractionDigits,
		isDefault:      isDefault,
	}
}

func (c Currency) Name() string          { return c.name }
func (c Currency) PluralName() string    { return c.pluralName }
func (c Currency) Symbol() string        { return c.symbol }
func (c Currency) FractionDigits() int32 { return c.fractionDigits }
func (c Currency) IsDefault() bool       { return c.isDefault }

// Matches 以名稱比對 (不分大小寫)
func (c Currency) Matches(other Currency) bool {
	return strings.EqualFold(c.name, other.name)
}

// Format 四捨五入 (half-up) 到 fractionDigits 位後加上符號前綴
//
// 固定使用 '.' 作為小數點且不做千分位，與 locale 無關。
// 例如: symbol "$", Format(1.005, 2) -> "$1.01"
func (c Currency) Format(amount decimal.Decimal, fractionDigits int32) string {
	if fractionDigits < 0 {
		fractionDigits = 0
	}
	// decimal.Round 在 5 時遠離 0 捨入，等同 HALF_UP
	return c.symbol + amount.Round(fractionDigits).StringFixed(fractionDigits)
}

// FormatDefault 使用貨幣本身設定的小數位數
func (c Currency) FormatDefault(amount decimal.Decimal) string {
	return c.Format(amount, c.fractionDigits)
}

// Display 依數量選擇單複數名稱，例如 "1 Coin" / "3 Coins"
func (c Currency) Display(amount decimal.Decimal) string {
	name := c.pluralName
	if amount.Equal(decimal.NewFromInt(1)) {
		name = c.name
	}
	return amount.Round(c.fractionDigits).StringFixed(c.fractionDigits) + " " + name
}
