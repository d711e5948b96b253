package postgres

import (
	"context"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgres struct {
	db *gorm.DB
}

func NewAttemptPostgres(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgres{db: db}
}

func (a *AttemptPostgres) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgres) GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgres) Update(ctx context.Context, attempt *models.ExamAttempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

func (a *AttemptPostgres) CreateSnapshot(ctx context.Context, rows []*models.AttemptQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).Create(rows).Error
}

func (a *AttemptPostgres) GetSnapshot(ctx context.Context, attemptID uint) ([]*models.AttemptQuestion, error) {
	var rows []*models.AttemptQuestion
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("position ASC").
		Preload("Question").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *AttemptPostgres) ListByExam(ctx context.Context, examID uint, limit, offset int) ([]*models.ExamAttempt, int64, error) {
	var attempts []*models.ExamAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.ExamAttempt{}).Where("exam_id = ?", examID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, limit, offset, "started_at", "desc")
	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

type ResultPostgres struct {
	db *gorm.DB
}

func NewResultPostgres(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgres{db: db}
}

func (r *ResultPostgres) Create(ctx context.Context, result *models.ExamResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *ResultPostgres) GetByID(ctx context.Context, id uint) (*models.ExamResult, error) {
	var result models.ExamResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgres) ListByExam(ctx context.Context, examID uint, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error) {
	var results []*models.ExamResult
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ExamResult{}).Where("exam_id = ?", examID)
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, "completed_at", "desc")
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// CountMatching ORs every non-empty weak identity key. Matching is
// intentionally permissive so returning takers are not undercounted; see
// the attempt service for the contract.
func (r *ResultPostgres) CountMatching(ctx context.Context, examID uint, keys repositories.IdentityKeys) (int, error) {
	if keys.Empty() {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ExamResult{}).
		Where("exam_id = ?", examID).
		Where(weakKeyMatch(r.db, keys)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// weakKeyMatch builds one parenthesized OR group over the non-empty keys.
// Empty keys are skipped so they never match rows with empty columns.
func weakKeyMatch(db *gorm.DB, keys repositories.IdentityKeys) *gorm.DB {
	match := db.Session(&gorm.Session{NewDB: true})
	matched := false
	if keys.UserID != "" {
		match = match.Where("student_id = ?", keys.UserID)
		matched = true
	}
	if keys.Username != "" {
		if matched {
			match = match.Or("student_id = ?", keys.Username)
		} else {
			match = match.Where("student_id = ?", keys.Username)
		}
		matched = true
	}
	if keys.FullName != "" {
		if matched {
			match = match.Or("student_name = ?", keys.FullName)
		} else {
			match = match.Where("student_name = ?", keys.FullName)
		}
	}
	return match
}
