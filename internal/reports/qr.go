package reports

import (
	"fmt"
	"strings"

	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MaxQRSize     = 1024
)

// CheckInTarget is what a printed QR code should open: the external link for
// by_link workshops, the workshop page otherwise.
func CheckInTarget(baseURL string, w *workshop.Workshop) string {
	if w.CheckInType == workshop.CheckInByLink && w.CheckInLink != nil && *w.CheckInLink != "" {
		return *w.CheckInLink
	}
	return fmt.Sprintf("%s/workshops/%s", strings.TrimRight(baseURL, "/"), w.ID)
}

// QRCode encodes content as a PNG.
func QRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	if size > MaxQRSize {
		size = MaxQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
