package document

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type itemRecord struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            Unit            `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// EncodeItems renders items as the JSON array stored alongside a document.
func EncodeItems(items []LineItem) ([]byte, error) {
	records := make([]itemRecord, len(items))
	for i, it := range items {
		records[i] = itemRecord(it)
	}

	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding line items: %w", err)
	}

	return b, nil
}

func DecodeItems(b []byte) ([]LineItem, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var records []itemRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decoding line items: %w", err)
	}

	items := make([]LineItem, len(records))
	for i, r := range records {
		items[i] = LineItem(r)
	}

	return items, nil
}
