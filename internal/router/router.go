package router

import (
	"time"

	"github.com/gdsanger/KManager-sub000/internal/config"
	"github.com/gdsanger/KManager-sub000/internal/handler"
	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/middleware"
	"github.com/gdsanger/KManager-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New returns a configured Gin engine over an already wired service registry.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker, svc *service.Registry) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter("api", 1000, time.Minute, middleware.ByClientIP).Handler())

	// a billing pass scans every due contract; keep manual triggers rare
	billingRunLimit := middleware.NewRateLimiter("billing_run", 10, time.Minute, middleware.ByActor).Handler()

	// ── Handlers ─────────────────────────────────────────────────────────────
	catalogH := handler.NewCatalogHandler(svc.Catalog)
	contractsH := handler.NewContractsHandler(svc.Contracts)
	documentsH := handler.NewDocumentsHandler(svc.Documents)
	billingH := handler.NewBillingHandler(svc.Billing)
	activitiesH := handler.NewActivitiesHandler(svc.Activity)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: leser, buchhaltung, administrator — declared per group
		read := middleware.RequireRole(middleware.RoleViewer, middleware.RoleAccounting, middleware.RoleAdmin)
		write := middleware.RequireRole(middleware.RoleAccounting, middleware.RoleAdmin)
		admin := middleware.RequireRole(middleware.RoleAdmin)

		v1.GET("/companies", read, catalogH.ListCompanies)
		v1.POST("/companies", admin, catalogH.CreateCompany)

		customers := v1.Group("/customers")
		{
			customers.GET("", read, catalogH.ListCustomers)
			customers.GET("/:id", read, catalogH.GetCustomer)
			customers.GET("/:id/tax-label", read, catalogH.CustomerTaxLabel)
			customers.POST("", write, catalogH.CreateCustomer)
		}

		taxRates := v1.Group("/tax-rates")
		{
			taxRates.GET("", read, catalogH.ListTaxRates)
			taxRates.POST("", admin, catalogH.CreateTaxRate)
			taxRates.PATCH("/:id/deactivate", admin, catalogH.DeactivateTaxRate)
			taxRates.PATCH("/:id/activate", admin, catalogH.ActivateTaxRate)
		}

		items := v1.Group("/items")
		{
			items.GET("", read, catalogH.ListItems)
			items.POST("", write, catalogH.CreateItem)
			items.PUT("/:id", write, catalogH.UpdateItem)
		}

		terms := v1.Group("/payment-terms")
		{
			terms.GET("", read, catalogH.ListPaymentTerms)
			terms.POST("", admin, catalogH.CreatePaymentTerm)
		}

		contracts := v1.Group("/contracts")
		{
			contracts.GET("", read, contractsH.List)
			contracts.GET("/:id", read, contractsH.Get)
			contracts.GET("/:id/runs", read, contractsH.Runs)
			contracts.POST("", write, contractsH.Create)
			contracts.PATCH("/:id/deactivate", write, contractsH.Deactivate)
			contracts.PATCH("/:id/activate", write, contractsH.Activate)
		}

		docs := v1.Group("/documents")
		{
			docs.GET("", read, documentsH.List)
			docs.GET("/:id", read, documentsH.Get)
			docs.GET("/:id/pdf", read, documentsH.DownloadPDF)
			docs.POST("", write, documentsH.Create)
			docs.POST("/:id/lines", write, documentsH.AddLine)
			docs.DELETE("/:id/lines/:line_id", write, documentsH.RemoveLine)
			docs.POST("/:id/recalculate", write, documentsH.Recalculate)
			docs.POST("/:id/issue", write, documentsH.Issue)
		}

		billing := v1.Group("/billing")
		{
			billing.POST("/run", write, billingRunLimit, billingH.Run)
			billing.GET("/runs", read, billingH.Runs)
		}

		v1.GET("/activities", read, activitiesH.List)
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
