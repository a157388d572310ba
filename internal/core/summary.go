package core

import "github.com/shopspring/decimal"

// NamedAmount represents an amount aggregated under a name (platform,
// category, month key, product).
type NamedAmount struct {
	Name   string
	Amount decimal.Decimal
	Count  int
}
