package signature

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/service-ledger/internal/models"
)

func TestKeccak256_Empty(t *testing.T) {
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256()))
}

func TestAccountFromKnownKey(t *testing.T) {
	key, err := ParsePrivateKey("0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)

	s := NewSigner(key, "")
	assert.Equal(t, "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", s.Account().String())
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	_, err := ParsePrivateKey("zz")
	assert.Error(t, err)

	_, err = ParsePrivateKey("0x0102")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("brand")
	require.NoError(t, err)
	assert.Equal(t, RoleBrand, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)
}

func TestPayload_BindsRecordRoleAndDomain(t *testing.T) {
	base := Payload(DefaultDomain, 1, RoleBrand)

	assert.Len(t, base, 32)
	assert.Equal(t, base, Payload(DefaultDomain, 1, RoleBrand))
	assert.NotEqual(t, base, Payload(DefaultDomain, 2, RoleBrand))
	assert.NotEqual(t, base, Payload(DefaultDomain, 1, RoleUser))
	assert.NotEqual(t, base, Payload("other-deployment", 1, RoleBrand))
}

func TestSignAndRecover(t *testing.T) {
	s, err := GenerateSigner("")
	require.NoError(t, err)

	sig := s.SignRecord(7, RoleUser)
	require.Len(t, sig, Length)
	assert.Contains(t, []byte{27, 28}, sig[64])

	signer, err := Recover(RecordDigest(DefaultDomain, 7, RoleUser), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Account(), signer)
}

func TestRecover_AcceptsZeroBasedRecoveryID(t *testing.T) {
	s, err := GenerateSigner("")
	require.NoError(t, err)

	sig := s.SignRecord(3, RoleBrand)
	sig[64] -= 27

	signer, err := Recover(RecordDigest(DefaultDomain, 3, RoleBrand), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Account(), signer)
}

func TestRecover_InvalidFormat(t *testing.T) {
	s, err := GenerateSigner("")
	require.NoError(t, err)
	digest := RecordDigest(DefaultDomain, 0, RoleBrand)
	good := s.SignDigest(digest)

	badV := append([]byte(nil), good...)
	badV[64] = 5

	zeroRS := make([]byte, Length)
	zeroRS[64] = 27

	tests := []struct {
		name string
		sig  []byte
	}{
		{"empty", nil},
		{"short", good[:64]},
		{"long", append(append([]byte(nil), good...), 0)},
		{"bad recovery id", badV},
		{"zero r and s", zeroRS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recover(digest, tt.sig)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	brand, err := GenerateSigner("")
	require.NoError(t, err)
	other, err := GenerateSigner("")
	require.NoError(t, err)
	v := NewVerifier("")

	ok, err := v.Verify(brand.Account(), 0, RoleBrand, brand.SignRecord(0, RoleBrand))
	require.NoError(t, err)
	assert.True(t, ok)

	// another wallet
	ok, err = v.Verify(brand.Account(), 0, RoleBrand, other.SignRecord(0, RoleBrand))
	require.NoError(t, err)
	assert.False(t, ok)

	// replayed from another record
	ok, err = v.Verify(brand.Account(), 0, RoleBrand, brand.SignRecord(1, RoleBrand))
	require.NoError(t, err)
	assert.False(t, ok)

	// replayed across roles
	ok, err = v.Verify(brand.Account(), 0, RoleBrand, brand.SignRecord(0, RoleUser))
	require.NoError(t, err)
	assert.False(t, ok)

	// signed for another deployment
	foreign := NewSigner(brand.key, "staging")
	ok, err = v.Verify(brand.Account(), 0, RoleBrand, foreign.SignRecord(0, RoleBrand))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.Verify(brand.Account(), 0, RoleBrand, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSignIn(t *testing.T) {
	s, err := GenerateSigner("")
	require.NoError(t, err)

	sig := s.SignIn(1700000000)
	signer, err := Recover(PersonalDigest([]byte(SignInText(s.Account(), 1700000000))), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Account(), signer)
}

func TestHexRoundTrip(t *testing.T) {
	sig := []byte{0xde, 0xad, 0xbe, 0xef}
	enc := EncodeHex(sig)
	assert.Equal(t, "0xdeadbeef", enc)

	dec, err := DecodeHex(enc)
	require.NoError(t, err)
	assert.Equal(t, sig, dec)

	_, err = DecodeHex("0xnothex")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSignInText(t *testing.T) {
	a := models.MustParseAccount("0x00000000000000000000000000000000000000aa")
	assert.Equal(t,
		"service-ledger sign-in\naccount: 0x00000000000000000000000000000000000000aa\nissued: 42",
		SignInText(a, 42))
}
