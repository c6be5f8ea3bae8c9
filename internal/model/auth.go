package model

import (
	"github.com/google/uuid"
)

// PrincipalRole covers every caller the API recognizes, professionals plus
// the administrative and client roles supplied by the identity collaborator.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Principal is the authenticated caller, extracted from a verified token by
// the auth middleware and passed explicitly into every core operation. The
// core never reads ambient storage.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// IsProfessional reports whether the principal holds one of the recognized
// professional roles.
func (p Principal) IsProfessional() bool {
	return ProfessionalRole(p.Role).IsValid()
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
