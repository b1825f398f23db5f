package router

import (
	"mail-service/internal/handlers"
	"mail-service/internal/repository"
	"mail-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(mail *service.MailService, repos *repository.Repository, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	mailHandler := handlers.NewMailHandler(mail, repos.Emails, log)
	templateHandler := handlers.NewTemplateHandler(mail, repos.Templates, log)
	attachmentHandler := handlers.NewAttachmentHandler(mail, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	emails := r.Group("/emails")
	{
		emails.GET("", mailHandler.List)
		emails.GET("/:id", mailHandler.Get)
		emails.GET("/:id/attachments", attachmentHandler.ListByEmail)
		emails.POST("", mailHandler.Queue)
		emails.POST("/requeue", mailHandler.Requeue)
	}

	r.POST("/attachments", attachmentHandler.Create)

	templates := r.Group("/templates")
	{
		templates.GET("", templateHandler.List)
		templates.GET("/:id", templateHandler.Get)
		templates.POST("", templateHandler.Create)
		templates.PUT("/:id", templateHandler.Update)
		templates.DELETE("/:id", templateHandler.Delete)
	}

	return r
}
