package models

import (
	"encoding/hex"
	"errors"
	"strings"
)

// AccountLength is the size in bytes of an account identifier.
const AccountLength = 20

// ErrInvalidAccount is returned when an account identifier cannot be parsed.
var ErrInvalidAccount = errors.New("invalid account")

// Account identifies a wallet: the owner of a vehicle, a service center or
// the brand authority.
type Account [AccountLength]byte

// ParseAccount parses a hex account identifier with an optional 0x prefix.
func ParseAccount(s string) (Account, error) {
	var a Account
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*AccountLength {
		return a, ErrInvalidAccount
	}
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return a, ErrInvalidAccount
	}
	return a, nil
}

// MustParseAccount is like ParseAccount but panics on error.
func MustParseAccount(s string) Account {
	a, err := ParseAccount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the 0x-prefixed lowercase hex form.
func (a Account) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the all-zero account.
func (a Account) IsZero() bool {
	return a == Account{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Account) UnmarshalText(text []byte) error {
	parsed, err := ParseAccount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
