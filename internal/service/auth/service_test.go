package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/pkg/auth"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
)

type fakeProfessionalRepo struct {
	professionals map[uuid.UUID]*model.Professional
}

func newFakeProfessionalRepo() *fakeProfessionalRepo {
	return &fakeProfessionalRepo{professionals: make(map[uuid.UUID]*model.Professional)}
}

func (r *fakeProfessionalRepo) Create(_ context.Context, p *model.Professional) error {
	r.professionals[p.ID] = p
	return nil
}

func (r *fakeProfessionalRepo) Get(_ context.Context, id uuid.UUID) (*model.Professional, error) {
	p, ok := r.professionals[id]
	if !ok {
		return nil, apperrors.NotFound("professional", nil)
	}
	return p, nil
}

func (r *fakeProfessionalRepo) GetByEmail(_ context.Context, email string) (*model.Professional, error) {
	for _, p := range r.professionals {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("professional", nil)
}

func (r *fakeProfessionalRepo) Update(_ context.Context, p *model.Professional) error {
	r.professionals[p.ID] = p
	return nil
}

func (r *fakeProfessionalRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	delete(r.professionals, id)
	return nil
}

func (r *fakeProfessionalRepo) List(_ context.Context, _ *model.ProfessionalFilters) ([]*model.Professional, error) {
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeProfessionalRepo) {
	t.Helper()
	repo := newFakeProfessionalRepo()
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             "access-secret",
		RefreshSecret:      "refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})
	return NewService(repo, jwtSvc), repo
}

func seedProfessional(t *testing.T, repo *fakeProfessionalRepo, password string) *model.Professional {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	p := &model.Professional{
		Name:         "Amy",
		Role:         model.RoleVeterinarian,
		Email:        "amy@example.com",
		PasswordHash: string(hash),
	}
	p.ID = uuid.New()
	repo.professionals[p.ID] = p
	return p
}

func TestLoginReturnsTokens(t *testing.T) {
	svc, repo := newTestService(t)
	seedProfessional(t, repo, "correct-horse")

	tokens, err := svc.Login(context.Background(), "amy@example.com", "correct-horse")

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, repo := newTestService(t)
	p := seedProfessional(t, repo, "correct-horse")

	_, err := svc.Login(context.Background(), "amy@example.com", "wrong")

	assert.Error(t, err)
	assert.Equal(t, 1, repo.professionals[p.ID].LoginAttempts)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	svc, repo := newTestService(t)
	seedProfessional(t, repo, "correct-horse")

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(context.Background(), "amy@example.com", "wrong")
		assert.Error(t, err)
	}

	// even the right password is refused while locked out
	_, err := svc.Login(context.Background(), "amy@example.com", "correct-horse")
	assert.Error(t, err)
}

func TestLoginResetsAttemptsAfterLockoutExpires(t *testing.T) {
	svc, repo := newTestService(t)
	p := seedProfessional(t, repo, "correct-horse")

	p.LoginAttempts = maxLoginAttempts
	past := time.Now().Add(-lockoutDuration - time.Minute)
	p.LastLoginAt = &past

	tokens, err := svc.Login(context.Background(), "amy@example.com", "correct-horse")

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, 0, repo.professionals[p.ID].LoginAttempts)
}

func TestRefreshIssuesNewTokens(t *testing.T) {
	svc, repo := newTestService(t)
	seedProfessional(t, repo, "correct-horse")

	tokens, err := svc.Login(context.Background(), "amy@example.com", "correct-horse")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, repo := newTestService(t)
	seedProfessional(t, repo, "correct-horse")

	tokens, err := svc.Login(context.Background(), "amy@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	assert.Error(t, err)
}

func TestValidateTokenResolvesPrincipal(t *testing.T) {
	svc, repo := newTestService(t)
	p := seedProfessional(t, repo, "correct-horse")

	tokens, err := svc.Login(context.Background(), "amy@example.com", "correct-horse")
	require.NoError(t, err)

	principal, err := svc.ValidateToken(context.Background(), tokens.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, p.ID, principal.ID)
	assert.Equal(t, "amy@example.com", principal.Email)
	assert.Equal(t, string(model.RoleVeterinarian), principal.Role)
	assert.True(t, principal.IsProfessional())
}
