package rand

import (
	cryptorand "crypto/rand"
)

// reduced base64, safe for URLs and log lines
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// String returns a random string of length n drawn from charset.
// The distribution is slightly non-uniform (modulo bias), which is
// acceptable here: the output is used for request correlation IDs,
// not for anything security-critical.
func String(n int) string {
	buf := make([]byte, n)
	if _, err := cryptorand.Read(buf); err != nil {
		panic("unreachable")
	}

	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}

	return string(buf)
}
