package signature

import (
	"github.com/ukydev/service-ledger/internal/models"
)

// Verifier checks record verification signatures for one domain.
type Verifier struct {
	domain string
}

// NewVerifier creates a verifier. An empty domain means DefaultDomain.
func NewVerifier(domain string) *Verifier {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Verifier{domain: domain}
}

// Domain returns the label bound into every message.
func (v *Verifier) Domain() string {
	return v.domain
}

// Verify reports whether sig was produced by expected over the message for
// (recordID, role). A malformed signature yields ErrInvalidFormat rather
// than false.
func (v *Verifier) Verify(expected models.Account, recordID uint64, role Role, sig []byte) (bool, error) {
	signer, err := Recover(RecordDigest(v.domain, recordID, role), sig)
	if err != nil {
		return false, err
	}
	return signer == expected, nil
}
