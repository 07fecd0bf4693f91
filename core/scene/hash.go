package scene

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"
)

// Hash returns the content hash of an element: the hex sha256 of its JSON
// encoding. Map keys are encoded sorted, so equal content hashes equally.
func Hash(e any) string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
