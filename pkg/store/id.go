package store

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/weftbuild/weft/pkg/object"
)

// ComputeID derives the content id for an encoded payload: the kind
// prefix plus the lowercase hex BLAKE3 digest of the encoding. The same
// encoding always yields the same id.
func ComputeID(kind object.Kind, encoded []byte) object.ID {
	sum := blake3.Sum256(encoded)
	return object.MakeID(kind, hex.EncodeToString(sum[:]))
}
