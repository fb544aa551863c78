package geo

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, issueSource IssueSource, recordSource RecordSource) {
	svc := NewService(issueSource, recordSource)
	handler := NewHandler(svc)

	grp := router.Group("/geo")
	{
		grp.GET("/map", handler.MapData)
		grp.GET("/nearby", handler.Nearby)
	}
}
