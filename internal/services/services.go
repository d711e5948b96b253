package services

import (
	"github.com/trainhub/exam-service/internal/cache"
	"github.com/trainhub/exam-service/internal/events"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

// ServiceManager wires the service graph once and hands it to handlers.
type ServiceManager interface {
	Permission() PermissionService
	Access() AccessService
	Attempt() AttemptService
	Exam() ExamService
	Question() QuestionService
	Export() ExportService
}

type serviceManager struct {
	permission PermissionService
	access     AccessService
	attempt    AttemptService
	exam       ExamService
	question   QuestionService
	export     ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheSvc cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) ServiceManager {
	permission := NewPermissionService(repo, cacheSvc, logger, validator)
	access := NewAccessService(repo, logger)
	sampler := NewQuestionSampler(repo, logger)

	return &serviceManager{
		permission: permission,
		access:     access,
		attempt:    NewAttemptService(repo, access, sampler, publisher, logger, validator),
		exam:       NewExamService(repo, permission, publisher, logger, validator),
		question:   NewQuestionService(repo, permission, logger, validator),
		export:     NewExportService(repo, permission, logger),
	}
}

func (m *serviceManager) Permission() PermissionService { return m.permission }
func (m *serviceManager) Access() AccessService         { return m.access }
func (m *serviceManager) Attempt() AttemptService       { return m.attempt }
func (m *serviceManager) Exam() ExamService             { return m.exam }
func (m *serviceManager) Question() QuestionService     { return m.question }
func (m *serviceManager) Export() ExportService         { return m.export }
