package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

// SampledQuestion is one question as served to a taker: correct labels
// stripped, options possibly reshuffled with labels reassigned positionally.
type SampledQuestion struct {
	QuestionID uint                `json:"question_id"`
	Position   int                 `json:"position"`
	Content    string              `json:"content"`
	Type       models.QuestionType `json:"type"`
	Options    []SampledOption     `json:"options"`
}

type SampledOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuestionSampler draws a fresh question set for each attempt. Randomness
// is math/rand quality; the source is injectable for deterministic tests.
type QuestionSampler struct {
	repo   repositories.Repository
	logger utils.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewQuestionSampler(repo repositories.Repository, logger utils.Logger) *QuestionSampler {
	return NewQuestionSamplerWithSource(repo, logger, rand.NewSource(time.Now().UnixNano()))
}

func NewQuestionSamplerWithSource(repo repositories.Repository, logger utils.Logger, src rand.Source) *QuestionSampler {
	return &QuestionSampler{
		repo:   repo,
		logger: logger,
		rng:    rand.New(src),
	}
}

// Sample draws exactly exam.QuestionCount distinct questions uniformly
// without replacement from the whole bank. It performs no writes: when the
// bank is too small the attempt is rejected before anything is persisted.
func (s *QuestionSampler) Sample(ctx context.Context, exam *models.Exam) ([]SampledQuestion, error) {
	pool, err := s.repo.Question().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	if len(pool) < exam.QuestionCount {
		return nil, &InsufficientBankError{
			Available: len(pool),
			Required:  exam.QuestionCount,
		}
	}

	s.mu.Lock()
	// A random permutation prefix is a uniform sample without replacement;
	// the prefix order doubles as the shuffled question order.
	picked := s.rng.Perm(len(pool))[:exam.QuestionCount]
	if !exam.ShuffleQuestions {
		// Without shuffling the drawn set keeps its bank order.
		sort.Ints(picked)
	}

	sampled := make([]SampledQuestion, len(picked))
	for i, poolIdx := range picked {
		sampled[i] = s.serveQuestion(pool[poolIdx], i, exam.ShuffleAnswers)
	}
	s.mu.Unlock()

	return sampled, nil
}

// serveQuestion builds the taker-facing view of one bank question. The
// stored Question row is never mutated; shuffling happens on a copy.
// Caller holds s.mu.
func (s *QuestionSampler) serveQuestion(q *models.Question, position int, shuffleAnswers bool) SampledQuestion {
	texts := make([]string, len(q.Options))
	copy(texts, q.Options)

	if shuffleAnswers {
		s.rng.Shuffle(len(texts), func(i, j int) {
			texts[i], texts[j] = texts[j], texts[i]
		})
	}

	options := make([]SampledOption, len(texts))
	for i, text := range texts {
		options[i] = SampledOption{
			Label: models.OptionLabel(i),
			Text:  text,
		}
	}

	return SampledQuestion{
		QuestionID: q.ID,
		Position:   position,
		Content:    q.Content,
		Type:       q.Type,
		Options:    options,
	}
}
