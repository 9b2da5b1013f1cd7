package signature

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ukydev/service-ledger/internal/models"
)

// Signer signs verification and sign-in messages with a wallet key.
type Signer struct {
	key    *secp256k1.PrivateKey
	domain string
}

// NewSigner creates a signer for key. An empty domain means DefaultDomain.
func NewSigner(key *secp256k1.PrivateKey, domain string) *Signer {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Signer{key: key, domain: domain}
}

// GenerateSigner creates a signer with a fresh random key.
func GenerateSigner(domain string) (*Signer, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewSigner(key, domain), nil
}

// ParsePrivateKey parses a 32-byte hex private key.
func ParsePrivateKey(s string) (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid private key: length %d, want 32", len(b))
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// Account returns the signer's account.
func (s *Signer) Account() models.Account {
	return AccountFromPublicKey(s.key.PubKey())
}

// SignDigest returns an r || s || v signature over digest, v in {27, 28}.
func (s *Signer) SignDigest(digest []byte) []byte {
	compact := ecdsa.SignCompact(s.key, digest, false)
	sig := make([]byte, Length)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig
}

// SignRecord signs the verification message for recordID in role.
func (s *Signer) SignRecord(recordID uint64, role Role) []byte {
	return s.SignDigest(RecordDigest(s.domain, recordID, role))
}

// SignIn signs the session sign-in text for the signer's account.
func (s *Signer) SignIn(issuedAt int64) []byte {
	return s.SignDigest(PersonalDigest([]byte(SignInText(s.Account(), issuedAt))))
}
