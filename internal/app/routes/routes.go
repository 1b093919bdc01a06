package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Freezeyy/CT-BE/internal/app/controllers"
	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	applicationController *controllers.ApplicationController,
	adjudicationController *controllers.AdjudicationController,
	catalogController *controllers.CatalogController,
	smeController *controllers.SMEController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Application routes: students own submission and drafts, lecturers
		// hold the coordinator surface.
		applications := authenticated.Group("/applications")
		{
			applicationsStudent := applications.Group("")
			applicationsStudent.Use(authMiddleware.RoleRequired(models.RoleStudent))
			{
				applicationsStudent.POST("", applicationController.Submit)
				applicationsStudent.GET("/draft", applicationController.GetDraft)
				applicationsStudent.GET("/mine", applicationController.ListMine)
			}

			applicationsLecturer := applications.Group("")
			applicationsLecturer.Use(authMiddleware.RoleRequired(models.RoleLecturer))
			{
				applicationsLecturer.GET("/assigned", applicationController.ListAssigned)
				applicationsLecturer.PATCH("/:id", applicationController.UpdateMetadata)
			}

			applications.GET("/:id", applicationController.GetByID)
		}

		// Adjudication routes (coordinator side)
		adjudication := authenticated.Group("")
		adjudication.Use(authMiddleware.RoleRequired(models.RoleLecturer))
		{
			subjectGroups := adjudication.Group("/subject-groups")
			{
				subjectGroups.GET("/:id/check", adjudicationController.CheckMatches)
				subjectGroups.POST("/:id/approve", adjudicationController.ApproveGroup)
				subjectGroups.POST("/:id/route-to-sme", adjudicationController.RouteGroup)
			}

			pastSubjects := adjudication.Group("/past-subjects")
			{
				pastSubjects.POST("/:id/approve", adjudicationController.ApproveSubject)
				pastSubjects.POST("/:id/route-to-sme", adjudicationController.RouteSubject)
			}

			// Catalog management
			catalog := adjudication.Group("/catalog")
			{
				catalog.GET("", catalogController.List)
				catalog.GET("/:id", catalogController.Get)
				catalog.POST("", catalogController.Create)
				catalog.POST("/bulk", catalogController.BulkCreate)
				catalog.DELETE("/:id", catalogController.Deactivate)
				catalog.POST("/:id/document", catalogController.UploadDocument)
			}

			// SME review surface
			sme := adjudication.Group("/sme")
			{
				sme.GET("/worklist", smeController.GetWorklist)
				sme.GET("/subject-groups/:id", smeController.GetGroupDetail)
				sme.POST("/subject-groups/:id/review", smeController.ReviewGroup)
			}
		}
	}
}
