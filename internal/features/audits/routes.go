package audits

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/oracle"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, tm *token.Manager, reportFinder ReportFinder, issueStore IssueStore, matcher RecordMatcher, o oracle.Oracle) *Repository {
	repo := NewRepository(db)
	svc := NewService(repo, reportFinder, issueStore, matcher, o)
	handler := NewHandler(svc, repo)

	grp := router.Group("/audits")
	grp.Use(middleware.Auth(tm))
	{
		grp.POST("/report/:reportId", handler.Run)
		grp.GET("/report/:reportId", handler.GetByReport)
		grp.GET("/issue/:issueId", handler.ListByIssue)

		admin := grp.Group("")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("", handler.List)
		}
	}

	return repo
}
