package pinning

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"tokenLauncher/internal/model"
)

const (
	cidV0Length   = 46
	sha256Code    = 0x12
	sha256Length  = 32
	base32Charset = "abcdefghijklmnopqrstuvwxyz234567"
)

// ValidateCID accepts a CIDv0 (base58 sha2-256 multihash) or a base32 CIDv1.
func ValidateCID(cid string) error {
	switch {
	case strings.HasPrefix(cid, "Qm"):
		if len(cid) != cidV0Length {
			return fmt.Errorf("cidv0 %q: length %d", cid, len(cid))
		}
		raw, err := base58.Decode(cid)
		if err != nil {
			return fmt.Errorf("cidv0 %q: %w", cid, err)
		}
		if len(raw) != 2+sha256Length || raw[0] != sha256Code || raw[1] != sha256Length {
			return fmt.Errorf("cidv0 %q: not a sha2-256 multihash", cid)
		}
		return nil
	case strings.HasPrefix(cid, "b") && len(cid) > 1:
		for _, r := range cid[1:] {
			if !strings.ContainsRune(base32Charset, r) {
				return fmt.Errorf("cidv1 %q: invalid base32 character %q", cid, r)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported cid %q", cid)
	}
}

// RefFromCID validates cid and returns its content reference.
func RefFromCID(cid string) (model.ContentRef, error) {
	cid = strings.TrimSpace(cid)
	if err := ValidateCID(cid); err != nil {
		return "", err
	}
	return model.ContentRef(model.ContentScheme + cid), nil
}

// ParseRef checks that ref is an ipfs:// reference with a valid cid.
func ParseRef(ref string) (model.ContentRef, error) {
	if !strings.HasPrefix(ref, model.ContentScheme) {
		return "", fmt.Errorf("not an %s reference: %q", model.ContentScheme, ref)
	}
	return RefFromCID(strings.TrimPrefix(ref, model.ContentScheme))
}
