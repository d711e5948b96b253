package services

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/utils"
	"gorm.io/datatypes"
)

func newSamplerForTest(repo *MockRepository, seed int64) *QuestionSampler {
	return NewQuestionSamplerWithSource(repo, utils.NewDefaultLogger(), rand.NewSource(seed))
}

func samplerExam(count int, shuffleQuestions, shuffleAnswers bool) *models.Exam {
	return &models.Exam{
		ID:               1,
		QuestionCount:    count,
		ShuffleQuestions: shuffleQuestions,
		ShuffleAnswers:   shuffleAnswers,
	}
}

func TestQuestionSampler_Sample(t *testing.T) {
	t.Run("draws exactly the requested number of distinct questions", func(t *testing.T) {
		repo := NewMockRepository()
		repo.question.On("GetAll", mock.Anything).Return(questionBank(20), nil)
		sampler := newSamplerForTest(repo, 1)

		for _, count := range []int{1, 5, 20} {
			sampled, err := sampler.Sample(context.Background(), samplerExam(count, true, false))

			assert.NoError(t, err)
			assert.Len(t, sampled, count)

			seen := make(map[uint]bool, count)
			for i, q := range sampled {
				assert.False(t, seen[q.QuestionID], "question %d drawn twice", q.QuestionID)
				seen[q.QuestionID] = true
				assert.Equal(t, i, q.Position)
			}
		}
	})

	t.Run("without question shuffling the draw keeps bank order", func(t *testing.T) {
		repo := NewMockRepository()
		repo.question.On("GetAll", mock.Anything).Return(questionBank(20), nil)
		sampler := newSamplerForTest(repo, 7)

		sampled, err := sampler.Sample(context.Background(), samplerExam(8, false, false))

		assert.NoError(t, err)
		ids := make([]uint, len(sampled))
		for i, q := range sampled {
			ids[i] = q.QuestionID
		}
		assert.True(t, sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] }))
	})

	t.Run("served questions never expose correct labels", func(t *testing.T) {
		repo := NewMockRepository()
		repo.question.On("GetAll", mock.Anything).Return(questionBank(5), nil)
		sampler := newSamplerForTest(repo, 1)

		sampled, err := sampler.Sample(context.Background(), samplerExam(5, false, false))

		assert.NoError(t, err)
		for _, q := range sampled {
			assert.NotEmpty(t, q.Content)
			assert.Len(t, q.Options, 3)
			for i, opt := range q.Options {
				assert.Equal(t, models.OptionLabel(i), opt.Label)
			}
		}
	})

	t.Run("answer shuffling permutes texts but preserves the option set", func(t *testing.T) {
		repo := NewMockRepository()
		bank := []*models.Question{{
			ID:            1,
			Content:       "Pick one",
			Type:          models.QuestionSingle,
			Options:       datatypes.JSONSlice[string]{"w", "x", "y", "z"},
			CorrectLabels: datatypes.JSONSlice[string]{"A"},
		}}
		repo.question.On("GetAll", mock.Anything).Return(bank, nil)
		sampler := newSamplerForTest(repo, 3)

		sampled, err := sampler.Sample(context.Background(), samplerExam(1, false, true))

		assert.NoError(t, err)
		texts := make([]string, len(sampled[0].Options))
		for i, opt := range sampled[0].Options {
			texts[i] = opt.Text
		}
		assert.ElementsMatch(t, []string{"w", "x", "y", "z"}, texts)
		// The bank row itself stays untouched.
		assert.Equal(t, datatypes.JSONSlice[string]{"w", "x", "y", "z"}, bank[0].Options)
	})

	t.Run("undersized bank rejects without writes", func(t *testing.T) {
		repo := NewMockRepository()
		repo.question.On("GetAll", mock.Anything).Return(questionBank(4), nil)
		sampler := newSamplerForTest(repo, 1)

		sampled, err := sampler.Sample(context.Background(), samplerExam(5, false, false))

		assert.Nil(t, sampled)
		assert.ErrorIs(t, err, ErrInsufficientBank)
		var bankErr *InsufficientBankError
		assert.ErrorAs(t, err, &bankErr)
		assert.Equal(t, 4, bankErr.Available)
		assert.Equal(t, 5, bankErr.Required)
		repo.AssertExpectations(t)
	})

	t.Run("fixed seed reproduces the same draw", func(t *testing.T) {
		draw := func() []uint {
			repo := NewMockRepository()
			repo.question.On("GetAll", mock.Anything).Return(questionBank(30), nil)
			sampler := newSamplerForTest(repo, 99)

			sampled, err := sampler.Sample(context.Background(), samplerExam(10, true, true))
			assert.NoError(t, err)

			ids := make([]uint, len(sampled))
			for i, q := range sampled {
				ids[i] = q.QuestionID
			}
			return ids
		}

		assert.Equal(t, draw(), draw())
	})
}
