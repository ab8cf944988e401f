package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vroo/hr-tracker/internal/handler"
	"github.com/vroo/hr-tracker/internal/middleware"
	"github.com/vroo/hr-tracker/pkg/logger"
)

type Handlers struct {
	Candidate *handler.CandidateHandler
	Employee  *handler.EmployeeHandler
	Telegram  *handler.TelegramHandler
	Jira      *handler.JiraHandler
	Reminder  *handler.ReminderHandler
	Health    *handler.HealthHandler
}

func New(h Handlers, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))

	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/telegram/webhook/:token", h.Telegram.Webhook)
	r.POST("/telegram/test", h.Telegram.Broadcast)
	r.POST("/webhooks/jira", h.Jira.Webhook)

	v1 := r.Group("/api/v1")
	{
		candidates := v1.Group("/candidates")
		{
			candidates.GET("", h.Candidate.List)
			candidates.POST("", h.Candidate.Create)
			candidates.GET("/:id", h.Candidate.Get)
			candidates.PATCH("/:id", h.Candidate.Update)
			candidates.DELETE("/:id/meet", h.Candidate.RemoveMeet)
		}

		employees := v1.Group("/employees")
		{
			employees.GET("", h.Employee.List)
			employees.GET("/:id", h.Employee.Get)
			employees.PATCH("/:id", h.Employee.Update)
		}

		v1.POST("/reminders/tick", h.Reminder.Tick)
	}

	return r
}
