package postgres

import (
	"context"
	"errors"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgres struct {
	db *gorm.DB
}

func NewExamPostgres(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgres{db: db}
}

func (e *ExamPostgres) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgres) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgres) Update(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Save(exam).Error
}

func (e *ExamPostgres) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Delete(&models.Exam{}, id).Error
}

func (e *ExamPostgres) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)
	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgres) HasResults(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.ExamResult{}).
		Where("exam_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *ExamPostgres) applyFilters(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.IsPublic != nil {
		query = query.Where("is_public = ?", *filters.IsPublic)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.OpenAt != nil {
		query = query.Where("start_date <= ? AND end_date >= ?", *filters.OpenAt, *filters.OpenAt)
	}
	return query
}

type AssignmentPostgres struct {
	db *gorm.DB
}

func NewAssignmentPostgres(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgres{db: db}
}

func (a *AssignmentPostgres) Create(ctx context.Context, assignment *models.ExamAssignment) error {
	return a.db.WithContext(ctx).Create(assignment).Error
}

func (a *AssignmentPostgres) Get(ctx context.Context, examID uint, userID string) (*models.ExamAssignment, error) {
	var assignment models.ExamAssignment
	err := a.db.WithContext(ctx).
		Where("exam_id = ? AND user_id = ?", examID, userID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (a *AssignmentPostgres) Delete(ctx context.Context, examID uint, userID string) error {
	return a.db.WithContext(ctx).
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Delete(&models.ExamAssignment{}).Error
}

func (a *AssignmentPostgres) ListByExam(ctx context.Context, examID uint) ([]*models.ExamAssignment, error) {
	var assignments []*models.ExamAssignment
	if err := a.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (a *AssignmentPostgres) ListByUser(ctx context.Context, userID string) ([]*models.ExamAssignment, error) {
	var assignments []*models.ExamAssignment
	if err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (a *AssignmentPostgres) Exists(ctx context.Context, examID uint, userID string) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.ExamAssignment{}).
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type UserPostgres struct {
	db *gorm.DB
}

func NewUserPostgres(db *gorm.DB) repositories.UserRepository {
	return &UserPostgres{db: db}
}

func (u *UserPostgres) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgres) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// sortableColumns whitelists the columns List queries may order by.
// The sort value arrives from the query string, so anything outside
// this set falls back to created_at instead of reaching the SQL.
var sortableColumns = map[string]bool{
	"created_at":   true,
	"title":        true,
	"start_date":   true,
	"started_at":   true,
	"completed_at": true,
}

// applyPaginationAndSort is shared by the list queries in this package.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string) *gorm.DB {
	if !sortableColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
