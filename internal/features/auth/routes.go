package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/middleware"
	"github.com/aryanracha/civiclens/internal/pkg/ratelimit"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

// Config carries the auth feature's wiring knobs.
type Config struct {
	CookieMaxAge int
	SecureCookie bool
}

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, tm *token.Manager, cfg Config) *Repository {
	repo := NewRepository(db)
	svc := NewService(repo, tm)
	handler := NewHandler(svc, cfg.CookieMaxAge, cfg.SecureCookie)

	// Credential endpoints are brute-forceable; keep them on a tight
	// per-IP budget.
	limiter := ratelimit.Middleware(ratelimit.New(10, time.Minute))

	grp := router.Group("/auth")
	{
		grp.POST("/signup", limiter, handler.Signup)
		grp.POST("/login", limiter, handler.Login)
		grp.POST("/logout", handler.Logout)

		me := grp.Group("")
		me.Use(middleware.Auth(tm))
		{
			me.GET("/me", handler.Me)
		}
	}

	return repo
}
