package qr_test

import (
	"bytes"
	"testing"

	"ms-orders/internal/order/qr"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func TestTrackingQR(t *testing.T) {
	gen := qr.NewGenerator("http://localhost:8080")

	png, err := gen.TrackingQR("LMIMF8K2T1XYZ")
	if err != nil {
		t.Fatalf("Failed to generate QR code: %v", err)
	}

	if len(png) == 0 {
		t.Error("Generated QR code is empty")
	}

	if !bytes.HasPrefix(png, pngSignature) {
		t.Error("Generated QR code is not a PNG image")
	}
}

func TestTrackingQRDifferentNumbers(t *testing.T) {
	gen := qr.NewGenerator("http://localhost:8080")

	png1, err := gen.TrackingQR("LMIMF8K2T1AAA")
	if err != nil {
		t.Fatalf("Failed to generate first QR code: %v", err)
	}

	png2, err := gen.TrackingQR("LMIMF8K2T1BBB")
	if err != nil {
		t.Fatalf("Failed to generate second QR code: %v", err)
	}

	if bytes.Equal(png1, png2) {
		t.Error("QR codes for different tracking numbers should be different")
	}
}
