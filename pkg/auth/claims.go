package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the JWT payload carried by every authenticated request.
// ImpersonatedBy is set only on tokens minted by an admin acting as another
// account; the acting admin's id is kept for audit logging.
type AccessTokenClaims struct {
	AccountID      uuid.UUID  `json:"account_id"`
	IsAdmin        bool       `json:"is_admin"`
	ImpersonatedBy *uuid.UUID `json:"impersonated_by,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input to MintAccessToken. JTI may be left empty to
// have one generated.
type AccessTokenPayload struct {
	AccountID      uuid.UUID
	IsAdmin        bool
	ImpersonatedBy *uuid.UUID
	JTI            string
}

// MagicLinkClaims is the payload of a single-use email login token.
type MagicLinkClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

const magicLinkPurpose = "magic_link"
