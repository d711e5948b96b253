package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/trainhub/exam-service/internal/cache"
	"github.com/trainhub/exam-service/internal/events"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

func newExamServiceForTest(repo *MockRepository) (ExamService, *events.MockEventPublisher) {
	logger := utils.NewDefaultLogger()
	publisher := events.NewMockEventPublisher(utils.ToSlogLogger(logger))
	perms := NewPermissionService(repo, cache.NewMemoryCache(), logger, utils.NewValidator())
	return NewExamService(repo, perms, publisher, logger, utils.NewValidator()), publisher
}

func validCreateExamRequest() *CreateExamRequest {
	return &CreateExamRequest{
		Title:         "Fire Safety Recertification",
		QuestionCount: 10,
		TimeLimit:     30,
		StartDate:     time.Now().Add(time.Hour),
		EndDate:       time.Now().Add(48 * time.Hour),
		MaxAttempts:   2,
	}
}

func TestExamService_Create(t *testing.T) {
	t.Run("admin creates with defaults applied", func(t *testing.T) {
		repo := NewMockRepository()
		repo.exam.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Exam) bool {
			return e.Title == "Fire Safety Recertification" &&
				e.IsActive &&
				e.Timezone == "UTC" &&
				e.CreatedBy == "a1"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Exam).ID = 5
		}).Return(nil)

		service, publisher := newExamServiceForTest(repo)

		exam, err := service.Create(context.Background(), admin("a1"), validCreateExamRequest())

		assert.NoError(t, err)
		assert.Equal(t, uint(5), exam.ID)

		published := publisher.Events()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventExamCreated, published[0].Type)
		repo.AssertExpectations(t)
	})

	t.Run("caller without the grant is rejected", func(t *testing.T) {
		repo := NewMockRepository()
		repo.permission.On("GetByCode", mock.Anything, PermExamCreate).Return(&models.Permission{ID: 1, Code: PermExamCreate}, nil)
		repo.permission.On("GetUserOverride", mock.Anything, "u1", PermExamCreate).Return(nil, nil)
		repo.permission.On("GetRoleCodes", mock.Anything, models.RoleTrainee).Return([]string{}, nil)

		service, _ := newExamServiceForTest(repo)

		exam, err := service.Create(context.Background(), trainee("u1"), validCreateExamRequest())

		assert.Nil(t, exam)
		assert.True(t, IsUnauthorized(err))
		repo.exam.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid payload fails validation", func(t *testing.T) {
		repo := NewMockRepository()
		service, _ := newExamServiceForTest(repo)

		req := validCreateExamRequest()
		req.EndDate = req.StartDate.Add(-time.Hour)

		exam, err := service.Create(context.Background(), admin("a1"), req)

		assert.Nil(t, exam)
		assert.True(t, IsValidation(err))
	})
}

func TestExamService_Update_OwnershipEnforced(t *testing.T) {
	repo := NewMockRepository()
	owned := &models.Exam{
		ID:        1,
		Title:     "Owned by someone else",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(time.Hour),
		CreatedBy: "other",
		IsActive:  true,
	}

	repo.permission.On("GetByCode", mock.Anything, PermExamUpdate).Return(&models.Permission{ID: 1, Code: PermExamUpdate}, nil)
	repo.permission.On("GetUserOverride", mock.Anything, "u1", PermExamUpdate).Return(nil, nil)
	repo.permission.On("GetRoleCodes", mock.Anything, models.RoleTrainee).Return([]string{PermExamUpdate}, nil)
	repo.exam.On("GetByID", mock.Anything, uint(1)).Return(owned, nil)

	service, _ := newExamServiceForTest(repo)

	_, err := service.Update(context.Background(), trainee("u1"), 1, &UpdateExamRequest{Title: stringPtr("Renamed")})

	assert.True(t, IsUnauthorized(err))
	repo.exam.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestExamService_Delete(t *testing.T) {
	exam := &models.Exam{ID: 1, Title: "To delete", CreatedBy: "a1", IsActive: true}

	t.Run("exam with results cannot be deleted", func(t *testing.T) {
		repo := NewMockRepository()
		repo.exam.On("GetByID", mock.Anything, uint(1)).Return(exam, nil)
		repo.exam.On("HasResults", mock.Anything, uint(1)).Return(true, nil)

		service, _ := newExamServiceForTest(repo)

		err := service.Delete(context.Background(), admin("a1"), 1)

		assert.ErrorIs(t, err, ErrExamHasResults)
		assert.True(t, IsConflict(err))
		repo.exam.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("exam without results is deleted", func(t *testing.T) {
		repo := NewMockRepository()
		repo.exam.On("GetByID", mock.Anything, uint(1)).Return(exam, nil)
		repo.exam.On("HasResults", mock.Anything, uint(1)).Return(false, nil)
		repo.exam.On("Delete", mock.Anything, uint(1)).Return(nil)

		service, _ := newExamServiceForTest(repo)

		assert.NoError(t, service.Delete(context.Background(), admin("a1"), 1))
		repo.AssertExpectations(t)
	})
}

func TestExamService_Assign(t *testing.T) {
	exam := &models.Exam{ID: 1, Title: "Assignable", IsActive: true}

	t.Run("duplicate assignment conflicts", func(t *testing.T) {
		repo := NewMockRepository()
		repo.exam.On("GetByID", mock.Anything, uint(1)).Return(exam, nil)
		repo.assignment.On("Exists", mock.Anything, uint(1), "u2").Return(true, nil)

		service, _ := newExamServiceForTest(repo)

		_, err := service.Assign(context.Background(), admin("a1"), 1, &AssignExamRequest{UserID: "u2"})

		assert.ErrorIs(t, err, ErrAssignmentExists)
		repo.assignment.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("assignment records the per-user ceiling", func(t *testing.T) {
		repo := NewMockRepository()
		repo.exam.On("GetByID", mock.Anything, uint(1)).Return(exam, nil)
		repo.assignment.On("Exists", mock.Anything, uint(1), "u2").Return(false, nil)
		repo.assignment.On("Create", mock.Anything, mock.MatchedBy(func(a *models.ExamAssignment) bool {
			return a.ExamID == 1 && a.UserID == "u2" && a.MaxAttempts != nil && *a.MaxAttempts == 5 && a.AssignedBy == "a1"
		})).Return(nil)

		service, publisher := newExamServiceForTest(repo)

		assignment, err := service.Assign(context.Background(), admin("a1"), 1, &AssignExamRequest{
			UserID:      "u2",
			MaxAttempts: intPtr(5),
		})

		assert.NoError(t, err)
		assert.Equal(t, "u2", assignment.UserID)

		published := publisher.Events()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventExamAssigned, published[0].Type)
		repo.AssertExpectations(t)
	})
}

func TestExamService_List_ScopesNonAdminsToOwnExams(t *testing.T) {
	repo := NewMockRepository()
	repo.exam.On("List", mock.Anything, mock.MatchedBy(func(f repositories.ExamFilters) bool {
		return f.CreatedBy != nil && *f.CreatedBy == "u1"
	})).Return([]*models.Exam{}, int64(0), nil)

	service, _ := newExamServiceForTest(repo)

	_, _, err := service.List(context.Background(), trainee("u1"), repositories.ExamFilters{})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
