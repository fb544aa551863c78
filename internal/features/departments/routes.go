package departments

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, tm *token.Manager) *Repository {
	repo := NewRepository(db)
	handler := NewHandler(repo)

	depts := router.Group("/departments")
	depts.Use(middleware.Auth(tm), middleware.AdminOnly())
	{
		depts.POST("", handler.Create)
		depts.GET("", handler.List)
		depts.GET("/:id", handler.Get)
	}

	return repo
}
