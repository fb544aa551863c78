package issues

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

// Deps are the collaborators the issues feature needs from the rest of the
// application.
type Deps struct {
	Reports  ReportStore
	Depts    DepartmentRouter
	Uploader Uploader
	Geocoder Geocoder
}

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, tm *token.Manager, deps Deps) *Repository {
	repo := NewRepository(db)
	svc := NewService(repo, deps.Reports, deps.Depts, deps.Uploader, deps.Geocoder)
	handler := NewHandler(svc, repo)

	grp := router.Group("/issues")
	{
		grp.GET("", handler.List)

		auth := grp.Group("")
		auth.Use(middleware.Auth(tm))
		{
			auth.POST("", handler.Submit)
			auth.GET("/mine", handler.Mine)
			auth.POST("/:id/follow", handler.Follow)
			auth.DELETE("/:id/follow", handler.Unfollow)

			admin := auth.Group("")
			admin.Use(middleware.AdminOnly())
			{
				admin.PATCH("/:id/status", handler.UpdateStatus)
				admin.PATCH("/:id/assign", handler.Assign)
				admin.DELETE("/:id", handler.Delete)
			}
		}

		grp.GET("/:id", handler.Get)
	}

	return repo
}
