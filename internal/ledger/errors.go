package ledger

import (
	"errors"

	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

var (
	ErrUnauthorized        = errors.New("caller is not the brand authority")
	ErrAlreadyRegistered   = errors.New("service center already registered")
	ErrNotRegistered       = errors.New("service center not registered")
	ErrNotAuthorizedCenter = errors.New("caller is not a registered service center")
	ErrRecordNotFound      = errors.New("record not found")
	ErrAlreadyVerified     = errors.New("record already verified")
	ErrSignatureMismatch   = errors.New("signature does not match expected signer")
	ErrInvalidPartsCount   = errors.New("service record needs exactly 5 parts")
	ErrStore               = errors.New("store failure")

	ErrInvalidSignatureFormat = signature.ErrInvalidFormat
	ErrInvalidAccount         = models.ErrInvalidAccount
)
