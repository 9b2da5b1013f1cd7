// Package signature builds the messages that brand and owner wallets sign and
// recovers signer accounts from secp256k1 signatures over them.
package signature

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/ukydev/service-ledger/internal/models"
	"golang.org/x/crypto/sha3"
)

// DefaultDomain labels signatures made for this deployment unless configured otherwise.
const DefaultDomain = "vehicle-service-ledger"

// Role is the verifying party a signature is bound to.
type Role string

const (
	RoleBrand Role = "brand"
	RoleUser  Role = "user"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleBrand || r == RoleUser
}

// ParseRole parses a role tag.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

const personalPrefix = "\x19Ethereum Signed Message:\n"

// Keccak256 hashes the concatenation of data with legacy Keccak-256.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Payload returns keccak256(keccak256(domain) || uint256(recordID) || role).
func Payload(domain string, recordID uint64, role Role) []byte {
	var id [32]byte
	binary.BigEndian.PutUint64(id[24:], recordID)
	return Keccak256(Keccak256([]byte(domain)), id[:], []byte(role))
}

// PersonalDigest returns the digest a wallet signs for msg when asked to sign
// it as a personal message.
func PersonalDigest(msg []byte) []byte {
	prefix := personalPrefix + strconv.Itoa(len(msg))
	return Keccak256([]byte(prefix), msg)
}

// RecordDigest is the digest signed to verify recordID in the given role.
func RecordDigest(domain string, recordID uint64, role Role) []byte {
	return PersonalDigest(Payload(domain, recordID, role))
}

// SignInText is the message an account signs to open an API session.
func SignInText(account models.Account, issuedAt int64) string {
	return fmt.Sprintf("service-ledger sign-in\naccount: %s\nissued: %d", account, issuedAt)
}
