package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidSignIn = errors.New("invalid sign-in signature")
	ErrStaleSignIn   = errors.New("sign-in request expired")
)

// Service issues and validates wallet session tokens
type Service struct {
	jwtSecret    []byte
	tokenExp     time.Duration
	signInMaxAge time.Duration
	now          func() time.Time
}

// NewService creates a new authentication service
func NewService(secret string, tokenExp, signInMaxAge time.Duration) *Service {
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour // default 24 hours
	}
	if signInMaxAge <= 0 {
		signInMaxAge = 5 * time.Minute
	}
	return &Service{
		jwtSecret:    []byte(secret),
		tokenExp:     tokenExp,
		signInMaxAge: signInMaxAge,
		now:          time.Now,
	}
}

// VerifySignIn checks that req was signed by the account it names and is
// recent enough, and returns that account.
func (s *Service) VerifySignIn(req models.SessionRequest) (models.Account, error) {
	account, err := models.ParseAccount(req.Account)
	if err != nil {
		return models.Account{}, err
	}

	issued := time.Unix(req.IssuedAt, 0)
	age := s.now().Sub(issued)
	if age > s.signInMaxAge || age < -time.Minute {
		return models.Account{}, ErrStaleSignIn
	}

	sig, err := signature.DecodeHex(req.Signature)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrInvalidSignIn, err)
	}
	digest := signature.PersonalDigest([]byte(signature.SignInText(account, req.IssuedAt)))
	signer, err := signature.Recover(digest, sig)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrInvalidSignIn, err)
	}
	if signer != account {
		return models.Account{}, ErrInvalidSignIn
	}
	return account, nil
}

// GenerateToken generates a JWT token for an account and returns its expiry
func (s *Service) GenerateToken(account models.Account) (string, int64, error) {
	now := s.now()
	exp := now.Add(s.tokenExp).Unix()
	claims := jwt.MapClaims{
		"sub": account.String(),
		"exp": exp,
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	account, err := models.ParseAccount(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		Account: account,
		Exp:     int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
