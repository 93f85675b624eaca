package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

// Create runs afterInsert like the real repository does inside its transaction
func (m *MockUserRepo) Create(ctx context.Context, user *domain.User, afterInsert func(ctx context.Context) error) error {
	if err := m.Called(ctx, user).Error(0); err != nil {
		return err
	}
	if afterInsert != nil {
		return afterInsert(ctx)
	}
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Activate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type MockEntrepriseRepo struct {
	mock.Mock
}

func (m *MockEntrepriseRepo) GetByUserID(ctx context.Context, userID string) (*domain.Entreprise, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entreprise), args.Error(1)
}

func (m *MockEntrepriseRepo) GetByID(ctx context.Context, id int64) (*domain.Entreprise, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entreprise), args.Error(1)
}

func (m *MockEntrepriseRepo) Upsert(ctx context.Context, userID string, patch domain.EntreprisePatch) (*domain.Entreprise, bool, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Entreprise), args.Bool(1), args.Error(2)
}

type MockFreelanceRepo struct {
	mock.Mock
}

func (m *MockFreelanceRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Freelance, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Freelance), args.Get(1).(int64), args.Error(2)
}

func (m *MockFreelanceRepo) GetByUserID(ctx context.Context, userID string) (*domain.Freelance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Freelance), args.Error(1)
}

func (m *MockFreelanceRepo) GetByID(ctx context.Context, id int64) (*domain.Freelance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Freelance), args.Error(1)
}

func (m *MockFreelanceRepo) Upsert(ctx context.Context, userID string, patch domain.FreelancePatch) (*domain.Freelance, bool, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Freelance), args.Bool(1), args.Error(2)
}

func (m *MockFreelanceRepo) SetMediaURL(ctx context.Context, userID string, media domain.FreelanceMedia, url string) (*domain.Freelance, error) {
	args := m.Called(ctx, userID, media, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Freelance), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, name string, data []byte) error {
	return m.Called(ctx, name, data).Error(0)
}

// MockMissionRepo hands the stored row to the callbacks the way the locked repository methods do
type MockMissionRepo struct {
	mock.Mock
}

func (m *MockMissionRepo) Create(ctx context.Context, mission *domain.Mission) error {
	return m.Called(ctx, mission).Error(0)
}

func (m *MockMissionRepo) GetByID(ctx context.Context, id int64) (*domain.Mission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mission), args.Error(1)
}

func (m *MockMissionRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Mission, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Mission), args.Get(1).(int64), args.Error(2)
}

func (m *MockMissionRepo) FetchByEntrepriseID(ctx context.Context, entrepriseID int64) ([]domain.Mission, error) {
	args := m.Called(ctx, entrepriseID)
	return args.Get(0).([]domain.Mission), args.Error(1)
}

func (m *MockMissionRepo) UpdateLocked(ctx context.Context, id int64, mutate func(*domain.Mission) error) (*domain.Mission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	row := *args.Get(0).(*domain.Mission)
	if err := mutate(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (m *MockMissionRepo) DeleteLocked(ctx context.Context, id int64, check func(*domain.Mission) error) error {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return args.Error(1)
	}
	row := *args.Get(0).(*domain.Mission)
	return check(&row)
}

type MockCandidatureRepo struct {
	mock.Mock
}

func (m *MockCandidatureRepo) Create(ctx context.Context, c *domain.Candidature) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidatureRepo) UpdateLocked(ctx context.Context, id int64, mutate func(*domain.Candidature) error) (*domain.Candidature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	row := *args.Get(0).(*domain.Candidature)
	if err := mutate(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (m *MockCandidatureRepo) DeleteLocked(ctx context.Context, id int64, check func(*domain.Candidature) error) error {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return args.Error(1)
	}
	row := *args.Get(0).(*domain.Candidature)
	return check(&row)
}

func (m *MockCandidatureRepo) GetView(ctx context.Context, id int64) (*domain.CandidatureView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidatureView), args.Error(1)
}

func (m *MockCandidatureRepo) ListForEntreprise(ctx context.Context, entrepriseID int64, statuses []domain.CandidatureStatus) ([]domain.CandidatureView, error) {
	args := m.Called(ctx, entrepriseID, statuses)
	return args.Get(0).([]domain.CandidatureView), args.Error(1)
}

func (m *MockCandidatureRepo) ListForFreelance(ctx context.Context, freelanceID int64) ([]domain.CandidatureView, error) {
	args := m.Called(ctx, freelanceID)
	return args.Get(0).([]domain.CandidatureView), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, event domain.NotificationEvent) {
	m.Called(ctx, userID, event)
}

// requireAppError asserts err is an AppError with the given status and reason
func requireAppError(t *testing.T, err error, code int, reason string) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
	if reason != "" {
		require.Equal(t, reason, appErr.Reason)
	}
	return appErr
}

func strPtr(s string) *string { return &s }
