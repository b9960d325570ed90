package build

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintKey separates compiled-output fingerprints from any other
// BLAKE3 use of the same bytes.
var fingerprintKey = blake3.Sum256([]byte("thematic.compiled-output.v1"))

// Fingerprint returns the hex-encoded keyed BLAKE3 digest of content.
func Fingerprint(content []byte) string {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("build: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}
