package remote

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/weftbuild/weft/pkg/object"
)

const (
	// ProtocolVersion is the current object exchange protocol version.
	ProtocolVersion = "1"

	headerProtocol = "Weft-Protocol"

	objectsPath = "/weft/v1/objects/"
)

// ValidateID checks that an id is well formed: a known kind prefix and a
// 64-character lowercase hex digest.
func ValidateID(id object.ID) error {
	if _, err := id.Kind(); err != nil {
		return err
	}
	_, digest, _ := strings.Cut(string(id), "_")
	if len(digest) != 64 {
		return fmt.Errorf("id %q: digest length %d, expected 64", id, len(digest))
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return fmt.Errorf("id %q: digest contains non-hex characters", id)
	}
	if strings.ToLower(digest) != digest {
		return fmt.Errorf("id %q: digest must be lowercase", id)
	}
	return nil
}
