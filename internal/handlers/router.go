package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/trainhub/exam-service/internal/services"
	"github.com/trainhub/exam-service/internal/utils"
)

type HandlerManager struct {
	examHandler       *ExamHandler
	questionHandler   *QuestionHandler
	attemptHandler    *AttemptHandler
	permissionHandler *PermissionHandler
	logger            utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		examHandler:       NewExamHandler(serviceManager.Exam(), serviceManager.Export(), logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), logger),
		attemptHandler:    NewAttemptHandler(serviceManager.Attempt(), serviceManager.Access(), logger),
		permissionHandler: NewPermissionHandler(serviceManager.Permission(), logger),
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(Authenticate(hm.logger))
	{
		// Exam catalog and admission. Attempt start and access checks stay
		// open to anonymous callers; public exams admit them.
		exams := v1.Group("/exams")
		{
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/:id/access", hm.attemptHandler.CheckAccess)
			exams.POST("/:id/attempts", hm.attemptHandler.StartAttempt)
			exams.GET("/:id/attempts/count", hm.attemptHandler.GetAttemptCount)

			authed := exams.Group("")
			authed.Use(RequireAuth())
			{
				authed.POST("", hm.examHandler.CreateExam)
				authed.GET("", hm.examHandler.ListExams)
				authed.PUT("/:id", hm.examHandler.UpdateExam)
				authed.DELETE("/:id", hm.examHandler.DeleteExam)

				authed.POST("/:id/assignments", hm.examHandler.AssignExam)
				authed.GET("/:id/assignments", hm.examHandler.ListAssignments)
				authed.DELETE("/:id/assignments/:user_id", hm.examHandler.UnassignExam)

				authed.GET("/:id/results", hm.examHandler.ListResults)
				authed.GET("/:id/results/export", hm.examHandler.ExportResults)
			}
		}

		// Submit is open so anonymous takers of public exams can finish.
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/submit", hm.attemptHandler.SubmitAttempt)
		}

		questions := v1.Group("/questions")
		questions.Use(RequireAuth())
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		permissions := v1.Group("/permissions")
		permissions.Use(RequireAuth())
		{
			permissions.GET("", hm.permissionHandler.ListPermissions)
			permissions.POST("/overrides/grant", hm.permissionHandler.GrantOverride)
			permissions.POST("/overrides/deny", hm.permissionHandler.DenyOverride)
			permissions.GET("/overrides/:user_id", hm.permissionHandler.ListOverrides)
			permissions.DELETE("/overrides/:user_id/:code", hm.permissionHandler.RevokeOverride)
			permissions.POST("/roles/grant", hm.permissionHandler.AddRoleGrant)
			permissions.POST("/roles/revoke", hm.permissionHandler.RemoveRoleGrant)
		}
	}
}
