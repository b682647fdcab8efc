package execdb

import "github.com/yanun0323/decimal"

func decimalTen() decimal.Decimal {
	return decimal.NewFromInt(10)
}
