package derivative

import (
	"crypto/sha256"
	"encoding/hex"
)

// SourceHash returns a stable, collision-resistant digest of a source
// file's relative path, used as the content-address for every
// derivative cache entry belonging to that file. Keying on path rather
// than bytes means a file can be hashed before it's ever opened.
func SourceHash(relativePath string) string {
	sum := sha256.Sum256([]byte(relativePath))
	return hex.EncodeToString(sum[:])[:16]
}
