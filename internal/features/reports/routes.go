package reports

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, tm *token.Manager) *Repository {
	repo := NewRepository(db)
	handler := NewHandler(repo)

	grp := router.Group("/reports")
	grp.Use(middleware.Auth(tm))
	{
		grp.GET("/mine", handler.Mine)
		grp.GET("/:id", handler.Get)

		admin := grp.Group("")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("", handler.List)
			admin.PATCH("/:id", handler.Update)
			admin.DELETE("/:id", handler.Delete)
		}
	}

	return repo
}
