package models

// Claims represents JWT claims of a wallet session
type Claims struct {
	Account Account `json:"account"`
	Exp     int64   `json:"exp"`
}

// SessionRequest is a signed sign-in request
type SessionRequest struct {
	Account   string `json:"account"`
	IssuedAt  int64  `json:"issued_at"`
	Signature string `json:"signature"`
}

// SessionResponse represents a successful sign-in
type SessionResponse struct {
	Token     string  `json:"token"`
	Account   Account `json:"account"`
	ExpiresAt int64   `json:"expires_at"`
}
