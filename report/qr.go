package report

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// digestQR encodes the source digest as a QR code PNG, so a printed report
// can be matched back to its archive without retyping the hex.
func digestQR(digest string, size int) ([]byte, error) {
	if digest == "" {
		return nil, fmt.Errorf("source digest is empty")
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(digest, qrcode.Medium, size)
}
