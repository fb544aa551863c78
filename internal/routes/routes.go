package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aryanracha/civiclens/internal/config"
	"github.com/aryanracha/civiclens/internal/features/admin"
	"github.com/aryanracha/civiclens/internal/features/audits"
	"github.com/aryanracha/civiclens/internal/features/auth"
	"github.com/aryanracha/civiclens/internal/features/departments"
	"github.com/aryanracha/civiclens/internal/features/geo"
	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/features/records"
	"github.com/aryanracha/civiclens/internal/features/reports"
	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
	"github.com/aryanracha/civiclens/internal/pkg/geocode"
	"github.com/aryanracha/civiclens/internal/pkg/logger"
	"github.com/aryanracha/civiclens/internal/pkg/oracle"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config) {
	api := router.Group("/api/v1")

	tm := token.NewManager(cfg.JWTSecret, cfg.JWTExpireHours)

	// External services shared across features.
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "civiclens")
	if err != nil {
		logger.Warn("cloudinary unavailable, uploads will fail: %v", err)
	}
	geocoder := geocode.NewClient(cfg.NominatimBaseURL, cfg.NominatimContact)
	aiOracle := oracle.NewService(cfg.OpenAIAPIKey, cfg.OpenAIModel, oracle.NewCVClient(cfg.CVServiceURL))

	// Register feature routes. Repositories returned here are shared with
	// downstream features.
	auth.RegisterRoutes(api, db, tm, auth.Config{
		CookieMaxAge: cfg.JWTExpireHours * 3600,
		SecureCookie: cfg.AppEnv == "production",
	})
	deptsRepo := departments.RegisterRoutes(api, db, tm)
	reportsRepo := reports.RegisterRoutes(api, db, tm)
	issuesRepo := issues.RegisterRoutes(api, db, tm, issues.Deps{
		Reports:  reportsRepo,
		Depts:    deptsRepo,
		Uploader: cld,
		Geocoder: geocoder,
	})
	recordsRepo := records.RegisterRoutes(api, db, tm, aiOracle, cld)
	audits.RegisterRoutes(api, db, tm, reportsRepo, issuesRepo, recordsRepo, aiOracle)
	geo.RegisterRoutes(api, issuesRepo, recordsRepo)
	admin.RegisterRoutes(api, issuesRepo, tm)
}
