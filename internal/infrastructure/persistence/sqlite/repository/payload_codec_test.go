package repository

import (
	"testing"

	"procissue/internal/domain/processing"
)

func TestPayloadCodecRoundTrip(t *testing.T) {
	t.Parallel()

	payload := processing.NewPayload(
		processing.NewIdentity("native", "libc.so", "missing_symbol"),
		processing.Diagnostics{ImageUUID: "8b1f", Attributes: map[string]string{"symbol": "malloc"}},
	)

	data, err := encodePayload(payload)
	if err != nil {
		t.Fatalf("encodePayload() error = %v", err)
	}
	// gzip magic
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		t.Fatalf("encodePayload() is not gzip: % x", data[:min(len(data), 4)])
	}

	decoded, err := decodePayload(data)
	if err != nil {
		t.Fatalf("decodePayload() error = %v", err)
	}
	if decoded.Identity() != payload.Identity() || decoded.ImageUUID != "8b1f" || decoded.Attributes["symbol"] != "malloc" {
		t.Fatalf("decodePayload() = %+v", decoded)
	}

	if _, err := decodePayload([]byte("not gzip")); err == nil {
		t.Fatalf("decodePayload() expected error for corrupt data")
	}
}
