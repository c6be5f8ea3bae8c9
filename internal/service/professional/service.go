package professional

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawhub/petcare-api/internal/email"
	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/internal/repository"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/search"
)

const (
	bcryptCost       = 12
	cacheTTL         = 5 * time.Minute
	cacheCleanupTick = 10 * time.Minute
)

type Service struct {
	repo     repository.ProfessionalRepository
	emailSvc email.Service
	cache    *gocache.Cache
	logger   *logger.Logger
}

func NewService(repo repository.ProfessionalRepository, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		emailSvc: emailSvc,
		cache:    gocache.New(cacheTTL, cacheCleanupTick),
		logger:   logger,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterProfessionalRequest) (*model.Professional, error) {
	role := model.ProfessionalRole(req.Role)
	if !role.IsValid() {
		return nil, apperrors.Validationf("unknown professional role: %s", req.Role)
	}
	if req.ExperienceYears < 0 {
		return nil, apperrors.Validation("experience years cannot be negative")
	}

	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Validation("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p := &model.Professional{
		Name:            req.Name,
		Role:            role,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Phone:           req.Phone,
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
	}
	p.ID = uuid.New()

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create professional: %w", err)
	}

	if err := s.emailSvc.SendWelcome(ctx, p.Email, p.Name); err != nil {
		s.logger.Error(err, "failed to send welcome email", "professional_id", p.ID.String())
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	if cached, found := s.cache.Get(id.String()); found {
		return cached.(*model.Professional), nil
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(id.String(), p, gocache.DefaultExpiration)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateProfessionalRequest) (*model.Professional, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Qualification != nil {
		p.Qualification = *req.Qualification
	}
	if req.ExperienceYears != nil {
		if *req.ExperienceYears < 0 {
			return nil, apperrors.Validation("experience years cannot be negative")
		}
		p.ExperienceYears = *req.ExperienceYears
	}
	if req.Verified != nil {
		p.Verified = *req.Verified
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.cache.Delete(id.String())
	return p, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(id.String())
	return nil
}

// List returns professionals filtered and ordered by the shared match
// ranking, ties broken by recency.
func (s *Service) List(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.Professional, error) {
	professionals, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if filters == nil || filters.Search == "" {
		return professionals, nil
	}

	matched := professionals[:0]
	for _, p := range professionals {
		if search.Matches(filters.Search, p.Name) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return search.Less(filters.Search, matched[i].Name, matched[j].Name)
	})
	return matched, nil
}
