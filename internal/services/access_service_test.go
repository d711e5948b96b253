package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/utils"
	"gorm.io/gorm"
)

func newAccessServiceForTest(repo *MockRepository) AccessService {
	return NewAccessService(repo, utils.NewDefaultLogger())
}

func activeExam(id uint, public bool) *models.Exam {
	return &models.Exam{
		ID:            id,
		Title:         "Quarterly Safety Check",
		QuestionCount: 10,
		TimeLimit:     30,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		MaxAttempts:   1,
		IsActive:      true,
		IsPublic:      public,
	}
}

func TestAccessService_CanAccess(t *testing.T) {
	tests := []struct {
		name           string
		identity       *models.Identity
		setupMocks     func(*MockRepository)
		expectedErr    error
		expectedReason string
		expectedMax    int
	}{
		{
			name:     "missing exam",
			identity: trainee("u1"),
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedErr: ErrExamNotFound,
		},
		{
			name:     "disabled exam rejects even admins",
			identity: admin("a1"),
			setupMocks: func(repo *MockRepository) {
				exam := activeExam(1, true)
				exam.IsActive = false
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(exam, nil)
			},
			expectedErr: ErrExamDisabled,
		},
		{
			name:     "admin bypasses assignment on a private exam",
			identity: admin("a1"),
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, false), nil)
				repo.assignment.On("Get", mock.Anything, uint(1), "a1").Return(nil, nil)
			},
			expectedReason: "admin",
			expectedMax:    1,
		},
		{
			name:     "public exam admits anonymous callers",
			identity: nil,
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, true), nil)
			},
			expectedReason: "public",
			expectedMax:    1,
		},
		{
			name:     "private exam rejects anonymous callers",
			identity: nil,
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, false), nil)
			},
			expectedErr: ErrAuthenticationRequired,
		},
		{
			name:     "private exam rejects unassigned users",
			identity: trainee("u1"),
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, false), nil)
				repo.assignment.On("Get", mock.Anything, uint(1), "u1").Return(nil, nil)
			},
			expectedErr: ErrNotAssigned,
		},
		{
			name:     "assigned user is admitted with the exam default ceiling",
			identity: trainee("u1"),
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, false), nil)
				repo.assignment.On("Get", mock.Anything, uint(1), "u1").Return(&models.ExamAssignment{
					ExamID: 1,
					UserID: "u1",
				}, nil)
			},
			expectedReason: "assigned",
			expectedMax:    1,
		},
		{
			name:     "assignment ceiling overrides the exam default",
			identity: trainee("u1"),
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, false), nil)
				repo.assignment.On("Get", mock.Anything, uint(1), "u1").Return(&models.ExamAssignment{
					ExamID:      1,
					UserID:      "u1",
					MaxAttempts: intPtr(5),
				}, nil)
			},
			expectedReason: "assigned",
			expectedMax:    5,
		},
		{
			name:     "assignment ceiling applies to admins too",
			identity: admin("a1"),
			setupMocks: func(repo *MockRepository) {
				repo.exam.On("GetByID", mock.Anything, uint(1)).Return(activeExam(1, false), nil)
				repo.assignment.On("Get", mock.Anything, uint(1), "a1").Return(&models.ExamAssignment{
					ExamID:      1,
					UserID:      "a1",
					MaxAttempts: intPtr(3),
				}, nil)
			},
			expectedReason: "admin",
			expectedMax:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepository()
			tt.setupMocks(repo)
			service := newAccessServiceForTest(repo)

			access, err := service.CanAccess(context.Background(), tt.identity, 1)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, access)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedReason, access.Reason)
				assert.Equal(t, tt.expectedMax, access.MaxAttempts)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAccessService_CheckWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	exam := &models.Exam{
		ID:        1,
		StartDate: start,
		EndDate:   end,
		Timezone:  "Asia/Ho_Chi_Minh",
	}

	service := newAccessServiceForTest(NewMockRepository())

	tests := []struct {
		name        string
		now         time.Time
		expectedErr error
	}{
		{name: "one second before opening", now: start.Add(-time.Second), expectedErr: ErrExamNotYetOpen},
		{name: "exactly at opening", now: start},
		{name: "mid window", now: start.Add(4 * time.Hour)},
		{name: "exactly at closing", now: end},
		{name: "one second after closing", now: end.Add(time.Second), expectedErr: ErrExamClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CheckWindow(exam, tt.now)

			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.expectedErr)

			var windowErr *WindowError
			assert.ErrorAs(t, err, &windowErr)
			assert.Equal(t, tt.now, windowErr.Now)
			if tt.expectedErr == ErrExamNotYetOpen {
				assert.Equal(t, start, windowErr.Boundary)
			} else {
				assert.Equal(t, end, windowErr.Boundary)
			}
			// The message carries both instants rendered in the exam's
			// display timezone.
			assert.Contains(t, err.Error(), "+07")
		})
	}
}
