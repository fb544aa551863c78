package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

func RegisterRoutes(router *gin.RouterGroup, issuesRepo *issues.Repository, tm *token.Manager) {
	handler := NewHandler(NewService(issuesRepo))

	grp := router.Group("/admin")
	grp.Use(middleware.Auth(tm), middleware.AdminOnly())
	{
		grp.GET("/stats", handler.Stats)
	}
}
