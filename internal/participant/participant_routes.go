package participant

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avensora/avensora-api/config"
	"github.com/avensora/avensora-api/internal/middleware"
	"github.com/avensora/avensora-api/pkg/objectstore"
)

// RoleLookup adapts the repository to the auth middleware's lookup contract.
func RoleLookup(repo Repository) middleware.RoleLookup {
	return func(id uint) (string, error) {
		p, err := repo.GetByID(id)
		if err != nil {
			return "", err
		}
		return p.Role, nil
	}
}

// RegisterParticipantRoutes sets up auth, referral, and the related admin
// routes.
func RegisterParticipantRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewRepository(db)
	service := NewService(repo)
	store := objectstore.NewDiskStore(appConfig.App.UploadDir, "/public/uploads")
	controller := NewController(repo, service, appConfig, store)

	authPublic := router.Group("/auth")
	{
		authPublic.POST("/register", controller.Register)
		authPublic.POST("/login", controller.Login)
		authPublic.GET("/verify-email", controller.VerifyEmail)
		authPublic.POST("/resend-verification", controller.ResendVerification)
	}

	// Referral stats are public: ambassadors share their standing.
	router.GET("/referrals/:code/stats", controller.ReferralStats)

	authProtected := router.Group("/auth")
	authProtected.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, RoleLookup(repo)))
	{
		authProtected.GET("/me", controller.Me)
		authProtected.POST("/change-password", controller.ChangePassword)
		authProtected.PUT("/me/id-card", controller.UploadIDCard)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, RoleLookup(repo)))
	adminRoutes.Use(middleware.RequireRole(RoleAdmin))
	{
		adminRoutes.PUT("/participants/:id/payment", controller.ApprovePayment)
		adminRoutes.POST("/referrals/:code/recount", controller.RecountReferrals)
	}
}
