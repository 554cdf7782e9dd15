package booking

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingID returns "BKG-" followed by ten uppercase hex characters.
func NewBookingID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BKG-" + strings.ToUpper(raw[:10])
}

// NewBoardingPassNumber returns "BP-" followed by six uppercase letters or digits.
func NewBoardingPassNumber() string {
	var b strings.Builder
	b.WriteString("BP-")
	max := big.NewInt(int64(len(alphanumeric)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(int64(uuid.New()[i]) % max.Int64())
		}
		b.WriteByte(alphanumeric[n.Int64()])
	}
	return b.String()
}
