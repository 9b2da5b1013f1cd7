package signature

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ukydev/service-ledger/internal/models"
)

// Length is the size of an r || s || v signature.
const Length = 65

// ErrInvalidFormat is returned when a signature blob cannot be parsed.
var ErrInvalidFormat = errors.New("invalid signature format")

// Recover returns the account whose key produced sig over digest.
func Recover(digest, sig []byte) (models.Account, error) {
	if len(sig) != Length {
		return models.Account{}, fmt.Errorf("%w: length %d, want %d", ErrInvalidFormat, len(sig), Length)
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return models.Account{}, fmt.Errorf("%w: recovery id %d", ErrInvalidFormat, sig[64])
	}

	// decred expects the recovery code first: 27 + id for uncompressed keys.
	compact := make([]byte, Length)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return AccountFromPublicKey(pub), nil
}

// AccountFromPublicKey derives the account: the last 20 bytes of the
// Keccak-256 hash of the uncompressed key without its 0x04 prefix.
func AccountFromPublicKey(pub *secp256k1.PublicKey) models.Account {
	var a models.Account
	h := Keccak256(pub.SerializeUncompressed()[1:])
	copy(a[:], h[len(h)-models.AccountLength:])
	return a
}

// DecodeHex decodes a 0x-prefixed or bare hex signature.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return b, nil
}

// EncodeHex renders a signature as 0x-prefixed hex.
func EncodeHex(sig []byte) string {
	return "0x" + hex.EncodeToString(sig)
}
