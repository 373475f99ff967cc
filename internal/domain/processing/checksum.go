package processing

import (
	"crypto/sha1"
	"encoding/hex"
)

// Checksum derives the identity key of a fault class.
//
// The digest covers type, scope and object in that order, each followed by a
// NUL byte. The 40-char hex output is the persisted key format.
func Checksum(scope string, object string, faultType string) string {
	h := sha1.New()
	for _, part := range []string{faultType, scope, object} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
