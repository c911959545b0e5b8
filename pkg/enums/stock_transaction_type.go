package enums

import "fmt"

// StockTransactionType classifies an entry in the stock transaction log.
type StockTransactionType string

const (
	StockTransactionTypeIn         StockTransactionType = "IN"
	StockTransactionTypeOut        StockTransactionType = "OUT"
	StockTransactionTypeAdjustment StockTransactionType = "ADJUSTMENT"
	StockTransactionTypeRetired    StockTransactionType = "RETIRED"
)

var validStockTransactionTypes = []StockTransactionType{
	StockTransactionTypeIn,
	StockTransactionTypeOut,
	StockTransactionTypeAdjustment,
	StockTransactionTypeRetired,
}

// String implements fmt.Stringer.
func (t StockTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StockTransactionType.
func (t StockTransactionType) IsValid() bool {
	for _, candidate := range validStockTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockTransactionType converts raw input into a StockTransactionType.
func ParseStockTransactionType(value string) (StockTransactionType, error) {
	for _, candidate := range validStockTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock transaction type %q", value)
}
