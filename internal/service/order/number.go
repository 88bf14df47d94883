package order

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Ambiguous glyphs (0/O, 1/I) are left out so numbers read back cleanly over the phone.
const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NumberFunc generates a human-facing order number for an order placed at t.
type NumberFunc func(t time.Time) (string, error)

// RandomNumber returns numbers shaped FAB-YYMMDD-XXXX.
func RandomNumber(t time.Time) (string, error) {
	suffix := make([]byte, 4)
	limit := big.NewInt(int64(len(numberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return "FAB-" + t.UTC().Format("060102") + "-" + string(suffix), nil
}
