package records

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, tm *token.Manager, extractor DocumentExtractor, vault DocumentVault) *Repository {
	repo := NewRepository(db)
	svc := NewService(repo, extractor, vault)
	handler := NewHandler(svc, repo)

	grp := router.Group("/records")
	grp.Use(middleware.Auth(tm), middleware.AdminOnly())
	{
		grp.POST("", handler.Upload)
		grp.GET("", handler.List)
		grp.GET("/:id", handler.Get)
		grp.DELETE("/:id", handler.Delete)
	}

	return repo
}
