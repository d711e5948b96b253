package postgres

import (
	"context"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db         *gorm.DB
	exam       repositories.ExamRepository
	assignment repositories.AssignmentRepository
	question   repositories.QuestionRepository
	attempt    repositories.AttemptRepository
	result     repositories.ResultRepository
	permission repositories.PermissionRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		exam:       NewExamPostgres(db),
		assignment: NewAssignmentPostgres(db),
		question:   NewQuestionPostgres(db),
		attempt:    NewAttemptPostgres(db),
		result:     NewResultPostgres(db),
		permission: NewPermissionPostgres(db),
		user:       NewUserPostgres(db),
	}
}

func (r *repository) Exam() repositories.ExamRepository             { return r.exam }
func (r *repository) Assignment() repositories.AssignmentRepository { return r.assignment }
func (r *repository) Question() repositories.QuestionRepository     { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *repository) Result() repositories.ResultRepository         { return r.result }
func (r *repository) Permission() repositories.PermissionRepository { return r.permission }
func (r *repository) User() repositories.UserRepository             { return r.user }

func (r *repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the schema for every engine entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Exam{},
		&models.ExamAssignment{},
		&models.Question{},
		&models.ExamAttempt{},
		&models.AttemptQuestion{},
		&models.ExamResult{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserPermission{},
	)
}
