package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator renders scannable PNGs pointing at the public tracking page, so
// a tracking number can be shared on printed paperwork.
type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

// TrackingQR encodes the public tracking URL for the given tracking number
// as a 256x256 PNG.
func (g *Generator) TrackingQR(trackingNumber string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v1/orders/by-tracking/%s", g.baseURL, trackingNumber)
	return qrcode.Encode(url, qrcode.Medium, 256)
}
