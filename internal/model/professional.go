package model

import (
	"time"
)

// ProfessionalRole enumerates the recognized professional roles.
type ProfessionalRole string

const (
	RoleVeterinarian ProfessionalRole = "veterinarian"
	RoleGroomer      ProfessionalRole = "groomer"
	RolePetTrainer   ProfessionalRole = "pet-trainer"
)

// IsValid reports whether role is one of the recognized professional roles.
func (r ProfessionalRole) IsValid() bool {
	switch r {
	case RoleVeterinarian, RoleGroomer, RolePetTrainer:
		return true
	}
	return false
}

// Professional is an identity record for a service provider. Professionals
// are never hard-deleted; deactivation sets DeletedAt.
type Professional struct {
	Base
	Name            string           `db:"name" json:"name"`
	Role            ProfessionalRole `db:"role" json:"role"`
	Email           string           `db:"email" json:"email"`
	PasswordHash    string           `db:"password_hash" json:"-"`
	Phone           string           `db:"phone" json:"phone,omitempty"`
	Qualification   string           `db:"qualification" json:"qualification"`
	ExperienceYears int              `db:"experience_years" json:"experience_years"`
	Verified        bool             `db:"verified" json:"verified"`
	LoginAttempts   int              `db:"login_attempts" json:"-"`
	LastLoginAt     *time.Time       `db:"last_login_at" json:"last_login_at,omitempty"`
}

type RegisterProfessionalRequest struct {
	Name            string `json:"name" binding:"required"`
	Role            string `json:"role" binding:"required,professionalrole"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Phone           string `json:"phone"`
	Qualification   string `json:"qualification" binding:"required"`
	ExperienceYears int    `json:"experience_years" binding:"min=0"`
}

type UpdateProfessionalRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Qualification   *string `json:"qualification"`
	ExperienceYears *int    `json:"experience_years"`
	Verified        *bool   `json:"verified"`
}

type ProfessionalFilters struct {
	Role   ProfessionalRole
	Search string
}
