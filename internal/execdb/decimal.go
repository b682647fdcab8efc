package execdb

import "github.com/yanun0323/decimal"

func decimalFromString(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.NewFromInt(0), nil
	}
	return decimal.NewFromString(s)
}
