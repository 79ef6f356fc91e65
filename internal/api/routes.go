package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/middleware"
)

// Services bundles the core services the handlers depend on.
type Services struct {
	Auth         core.AuthService
	Stores       core.StoreService
	Products     core.ProductService
	Categories   core.CategoryService
	Tags         core.TagService
	Subscription core.SubscriptionService
	Storefront   core.StorefrontService
}

// SetupRoutes registers every route on router. Global middleware (request id, logging,
// recovery, CORS) is expected to be installed by the caller.
func SetupRoutes(router *gin.Engine, services Services, webhookSecret string, logger *zap.Logger) {
	authMW := middleware.NewAuthMiddleware(services.Auth, logger)

	authHandler := NewAuthHandler(services.Auth, logger)
	storeHandler := NewStoreHandler(services.Stores, logger)
	productHandler := NewProductHandler(services.Products, logger)
	catalogHandler := NewCatalogHandler(services.Categories, services.Tags, logger)
	subscriptionHandler := NewSubscriptionHandler(services.Subscription, webhookSecret, logger)
	storefrontHandler := NewStorefrontHandler(services.Storefront, logger)

	apiV1 := router.Group("/api/v1")
	{
		storefront := apiV1.Group("/storefront/:slug")
		{
			storefront.GET("", storefrontHandler.GetStorefront)
			storefront.GET("/products", storefrontHandler.ListProducts)
			storefront.GET("/products/:productId", storefrontHandler.GetProduct)
			storefront.GET("/categories", storefrontHandler.ListCategories)
		}

		billing := apiV1.Group("/billing")
		{
			billing.GET("/plans", subscriptionHandler.ListPlans)
			// Authenticated by the processor signature, not by an ID token.
			billing.POST("/webhooks/mercadopago", subscriptionHandler.Webhook)
		}

		apiV1.GET("/auth/session", authMW.VerifyToken(), authHandler.GetSession)
		apiV1.POST("/stores", authMW.VerifyToken(), storeHandler.CreateStore)

		tenant := apiV1.Group("", authMW.VerifyToken(), authMW.RequireStore())
		{
			store := tenant.Group("/store")
			{
				store.GET("", storeHandler.GetStore)
				store.GET("/sections", storeHandler.ListSections)
				store.PATCH("/sections/:section", storeHandler.UpdateSection)
				store.PUT("/members/:uid", authMW.RequireRole(identity.RoleOwner, identity.RoleAdmin), authHandler.SetMemberRole)
			}

			products := tenant.Group("/products")
			{
				products.POST("", productHandler.CreateProduct)
				products.GET("", productHandler.ListProducts)
				products.GET("/stats", productHandler.GetStats)
				products.GET("/:productId", productHandler.GetProduct)
				products.PATCH("/:productId", productHandler.UpdateProduct)
				products.PATCH("/:productId/status", productHandler.SetProductStatus)
				products.DELETE("/:productId", productHandler.DeleteProduct)
			}

			categories := tenant.Group("/categories")
			{
				categories.POST("", catalogHandler.CreateCategory)
				categories.GET("", catalogHandler.ListCategories)
				categories.GET("/:categoryId", catalogHandler.GetCategory)
				categories.PATCH("/:categoryId", catalogHandler.UpdateCategory)
				categories.DELETE("/:categoryId", catalogHandler.DeleteCategory)
			}

			tags := tenant.Group("/tags")
			{
				tags.POST("", catalogHandler.CreateTag)
				tags.GET("", catalogHandler.ListTags)
				tags.GET("/:tagId", catalogHandler.GetTag)
				tags.PATCH("/:tagId", catalogHandler.UpdateTag)
				tags.DELETE("/:tagId", catalogHandler.DeleteTag)
			}

			subscription := tenant.Group("/subscription", authMW.RequireRole(identity.RoleOwner, identity.RoleAdmin))
			{
				subscription.GET("", subscriptionHandler.GetSubscription)
				subscription.POST("", subscriptionHandler.Subscribe)
				subscription.POST("/cancel", subscriptionHandler.Cancel)
				subscription.POST("/pause", subscriptionHandler.Pause)
				subscription.POST("/resume", subscriptionHandler.Resume)
				subscription.POST("/sync", subscriptionHandler.Sync)
			}
		}

		// Project-wide operations; the store admin role does not grant these.
		admin := apiV1.Group("/admin", authMW.VerifyToken(), authMW.RequirePlatformAdmin())
		{
			users := admin.Group("/users/:uid")
			{
				users.GET("/claims", authHandler.GetClaims)
				users.PUT("/claims", authHandler.SetClaims)
				users.POST("/enable", authHandler.EnableUser)
				users.POST("/disable", authHandler.DisableUser)
				users.DELETE("", authHandler.DeleteUser)
			}
			admin.POST("/plans", subscriptionHandler.CreatePlan)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
