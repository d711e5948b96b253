package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
)

// MockExamRepository is a mock implementation of ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExamRepository) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Exam), args.Get(1).(int64), args.Error(2)
}

func (m *MockExamRepository) HasResults(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, assignment *models.ExamAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Get(ctx context.Context, examID uint, userID string) (*models.ExamAssignment, error) {
	args := m.Called(ctx, examID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, examID uint, userID string) error {
	args := m.Called(ctx, examID, userID)
	return args.Error(0)
}

func (m *MockAssignmentRepository) ListByExam(ctx context.Context, examID uint) ([]*models.ExamAssignment, error) {
	args := m.Called(ctx, examID)
	return args.Get(0).([]*models.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]*models.ExamAssignment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) Exists(ctx context.Context, examID uint, userID string) (bool, error) {
	args := m.Called(ctx, examID, userID)
	return args.Bool(0), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) GetAll(ctx context.Context) ([]*models.Question, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) InUse(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamAttempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.ExamAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) CreateSnapshot(ctx context.Context, rows []*models.AttemptQuestion) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetSnapshot(ctx context.Context, attemptID uint) ([]*models.AttemptQuestion, error) {
	args := m.Called(ctx, attemptID)
	return args.Get(0).([]*models.AttemptQuestion), args.Error(1)
}

func (m *MockAttemptRepository) ListByExam(ctx context.Context, examID uint, limit, offset int) ([]*models.ExamAttempt, int64, error) {
	args := m.Called(ctx, examID, limit, offset)
	return args.Get(0).([]*models.ExamAttempt), args.Get(1).(int64), args.Error(2)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *models.ExamResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, id uint) (*models.ExamResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamResult), args.Error(1)
}

func (m *MockResultRepository) ListByExam(ctx context.Context, examID uint, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error) {
	args := m.Called(ctx, examID, filters)
	return args.Get(0).([]*models.ExamResult), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) CountMatching(ctx context.Context, examID uint, keys repositories.IdentityKeys) (int, error) {
	args := m.Called(ctx, examID, keys)
	return args.Int(0), args.Error(1)
}

// MockPermissionRepository is a mock implementation of PermissionRepository
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Permission), args.Error(1)
}

func (m *MockPermissionRepository) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Permission), args.Error(1)
}

func (m *MockPermissionRepository) CreatePermission(ctx context.Context, permission *models.Permission) error {
	args := m.Called(ctx, permission)
	return args.Error(0)
}

func (m *MockPermissionRepository) GetRoleCodes(ctx context.Context, role models.UserRole) ([]string, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPermissionRepository) AddRoleGrant(ctx context.Context, role models.UserRole, code string) error {
	args := m.Called(ctx, role, code)
	return args.Error(0)
}

func (m *MockPermissionRepository) RemoveRoleGrant(ctx context.Context, role models.UserRole, code string) error {
	args := m.Called(ctx, role, code)
	return args.Error(0)
}

func (m *MockPermissionRepository) GetUserOverride(ctx context.Context, userID, code string) (*models.UserPermission, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPermission), args.Error(1)
}

func (m *MockPermissionRepository) UpsertUserOverride(ctx context.Context, override *models.UserPermission) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *MockPermissionRepository) DeleteUserOverride(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockPermissionRepository) ListUserOverrides(ctx context.Context, userID string) ([]*models.UserPermission, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.UserPermission), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockRepository bundles the entity mocks behind the Repository interface.
// WithTransaction runs fn against the same mocks, so expectations set on
// them cover transactional calls too.
type MockRepository struct {
	mock.Mock
	exam       *MockExamRepository
	assignment *MockAssignmentRepository
	question   *MockQuestionRepository
	attempt    *MockAttemptRepository
	result     *MockResultRepository
	permission *MockPermissionRepository
	user       *MockUserRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		exam:       &MockExamRepository{},
		assignment: &MockAssignmentRepository{},
		question:   &MockQuestionRepository{},
		attempt:    &MockAttemptRepository{},
		result:     &MockResultRepository{},
		permission: &MockPermissionRepository{},
		user:       &MockUserRepository{},
	}
}

func (m *MockRepository) Exam() repositories.ExamRepository             { return m.exam }
func (m *MockRepository) Assignment() repositories.AssignmentRepository { return m.assignment }
func (m *MockRepository) Question() repositories.QuestionRepository     { return m.question }
func (m *MockRepository) Attempt() repositories.AttemptRepository       { return m.attempt }
func (m *MockRepository) Result() repositories.ResultRepository         { return m.result }
func (m *MockRepository) Permission() repositories.PermissionRepository { return m.permission }
func (m *MockRepository) User() repositories.UserRepository             { return m.user }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.exam.AssertExpectations(t)
	m.assignment.AssertExpectations(t)
	m.question.AssertExpectations(t)
	m.attempt.AssertExpectations(t)
	m.result.AssertExpectations(t)
	m.permission.AssertExpectations(t)
	m.user.AssertExpectations(t)
}

// ===== SMALL TEST HELPERS =====

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
