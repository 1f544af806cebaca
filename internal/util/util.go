package util

import (
	"crypto/sha1"
	"encoding/hex"
)

const shortIDLen = 12

// ShortID derives a short stable identifier from a string. Used to correlate
// log lines about the same request without repeating the full URL.
func ShortID(str string) string {
	hasher := sha1.New()
	hasher.Write([]byte(str))

	return hex.EncodeToString(hasher.Sum(nil))[:shortIDLen]
}
