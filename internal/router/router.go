package router

import (
	"time"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/config"
	"github.com/myr2601/mintyapp/internal/handler"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/middleware"
	"github.com/myr2601/mintyapp/internal/repository"
	"github.com/myr2601/mintyapp/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; token revocation is then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}

	// ── Infrastructure ───────────────────────────────────────────────────────
	denylist := infra.NewTokenDenylist(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	officeRepo := repository.NewOfficeRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	userRepo := repository.NewUserRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	ledgerRepo := repository.NewTransactionRepository(db)
	permRepo := repository.NewPermissionRepository()

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg, denylist)
	dashboardSvc := service.NewDashboardService(materialRepo, ledgerRepo, cfg.LowStockThreshold, cfg.PageSize)
	transactionSvc := service.NewTransactionService(userRepo, materialRepo, ledgerRepo, permRepo)
	materialSvc := service.NewMaterialService(materialRepo, unitRepo, ledgerRepo, permRepo)
	importSvc := service.NewImportService(materialRepo, unitRepo)
	userSvc := service.NewUserService(userRepo, officeRepo, materialRepo, permRepo)
	officeSvc := service.NewOfficeService(officeRepo)
	unitSvc := service.NewUnitService(unitRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	transactionsH := handler.NewTransactionsHandler(transactionSvc)
	materialsH := handler.NewMaterialsHandler(materialSvc, importSvc, cfg.ImportMaxMB<<20)
	usersH := handler.NewUsersHandler(userSvc)
	officesH := handler.NewOfficesHandler(officeSvc)
	unitsH := handler.NewUnitsHandler(unitSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	var revocations middleware.Revocations
	if denylist.Enabled() {
		revocations = denylist
	}
	jwtMW := middleware.JWTAuth(cfg.SecretKey, revocations, authSvc)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		v1.GET("/dashboard", dashboardH.Summary)

		tx := v1.Group("/transactions")
		{
			tx.GET("", transactionsH.History)
			tx.POST("", transactionsH.Process)
			tx.GET("/materials", transactionsH.Materials)
			tx.DELETE("", middleware.RequireRole(access.RoleAdmin), transactionsH.Clear)
		}

		admin := v1.Group("/admin", middleware.RequireRole(access.RoleAdmin))
		{
			materials := admin.Group("/materials")
			{
				materials.GET("", materialsH.List)
				materials.POST("", materialsH.Create)
				materials.POST("/import", materialsH.Import)
				materials.GET("/export", materialsH.Export)
				materials.GET("/:id", materialsH.Get)
				materials.PUT("/:id", materialsH.Update)
				materials.DELETE("/:id", materialsH.Delete)
			}

			users := admin.Group("/users")
			{
				users.GET("", usersH.List)
				users.POST("", usersH.Create)
				users.PUT("/:id", usersH.Update)
				users.DELETE("/:id", usersH.Delete)
				users.GET("/:id/permissions", usersH.Permissions)
				users.PUT("/:id/permissions", usersH.ReplacePermissions)
			}

			offices := admin.Group("/offices")
			{
				offices.GET("", officesH.List)
				offices.POST("", officesH.Create)
				offices.PUT("/:id", officesH.Update)
				offices.DELETE("/:id", officesH.Delete)
			}

			units := admin.Group("/units")
			{
				units.GET("", unitsH.List)
				units.POST("", unitsH.Create)
				units.PUT("/:id", unitsH.Update)
				units.DELETE("/:id", unitsH.Delete)
			}
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
