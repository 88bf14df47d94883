package cart

import (
	"encoding/json"
	"fmt"

	"fabricstore/internal/domain"
)

// Encode serializes items as a JSON array. A nil cart encodes as [].
func Encode(items []domain.CartItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	return json.Marshal(items)
}

// Decode parses the output of Encode. Empty input is an empty cart.
func Decode(data []byte) ([]domain.CartItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}
