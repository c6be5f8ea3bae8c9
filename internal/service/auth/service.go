package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/internal/repository"
	"github.com/pawhub/petcare-api/pkg/auth"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type Service struct {
	repo   repository.ProfessionalRepository
	jwtSvc auth.JWTService
}

func NewService(repo repository.ProfessionalRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		repo:   repo,
		jwtSvc: jwtSvc,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if p.LoginAttempts >= maxLoginAttempts {
		if p.LastLoginAt != nil && time.Since(*p.LastLoginAt) < lockoutDuration {
			return nil, apperrors.Unauthorized(fmt.Errorf("account is locked, please try again later"))
		}
		p.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		p.LoginAttempts++
		now := time.Now()
		p.LastLoginAt = &now
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	p.LoginAttempts = 0
	now := time.Now()
	p.LastLoginAt = &now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	return s.generateTokens(p)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	p, err := s.repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("unknown principal"))
	}

	return s.generateTokens(p)
}

// ValidateToken resolves a bearer token into a principal for the middleware.
func (s *Service) ValidateToken(_ context.Context, token string) (*model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return &model.Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

func (s *Service) generateTokens(p *model.Professional) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(p.ID, p.Email, string(p.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(p.ID, p.Email, string(p.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
