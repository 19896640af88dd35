package app

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stockroom.io/stockroom/internal/api/handlers"
	"stockroom.io/stockroom/internal/api/middleware"
	"stockroom.io/stockroom/internal/config"
)

// Public prefixes that do NOT require bearer authentication. Image
// derivatives are public reads; they carry no sensitive data.
var publicPrefixes = []string{
	"/api/v1/health/",
	"/images/",
	"/static/",
}

func newRouter(cfg *config.Config, server *handlers.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	router.Use(cors.New(corsCfg))

	router.Use(jwtSkipPublic([]byte(cfg.Auth.SigningKey)))

	router.Static("/images", cfg.Storage.ImageDir)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health/live", server.Health)
		v1.GET("/health/ready", server.Ready)

		v1.GET("/assets", server.ListAssets)
		v1.POST("/assets", server.CreateAsset)
		v1.POST("/assets/bulk", server.BulkApply)
		v1.GET("/assets/:id", server.GetAsset)
		v1.PUT("/assets/:id", server.UpdateAsset)
		v1.DELETE("/assets/:id", server.DeleteAsset)
		v1.POST("/assets/:id/checkout", server.CheckOutAsset)
		v1.POST("/assets/:id/checkin", server.CheckInAsset)
		v1.GET("/assets/:id/history", server.AssetHistory)
		v1.GET("/assets/:id/maintenance", server.ListMaintenance)
		v1.POST("/assets/:id/maintenance", server.ScheduleMaintenance)
		v1.POST("/maintenance/:id/complete", server.CompleteMaintenance)

		v1.GET("/categories", server.ListCategories)
		v1.POST("/categories", server.CreateCategory)
		v1.GET("/categories/:id", server.GetCategory)
		v1.PUT("/categories/:id", server.UpdateCategory)
		v1.DELETE("/categories/:id", server.DeleteCategory)

		v1.GET("/suppliers", server.ListSuppliers)
		v1.POST("/suppliers", server.CreateSupplier)
		v1.GET("/suppliers/:id", server.GetSupplier)
		v1.PUT("/suppliers/:id", server.UpdateSupplier)
		v1.DELETE("/suppliers/:id", server.DeleteSupplier)

		v1.GET("/users", server.ListUsers)
		v1.GET("/system-events", server.ListSystemEvents)
	}

	return router
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public
// routes.
func jwtSkipPublic(signingKey []byte) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(signingKey)
	return func(c *gin.Context) {
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		jwtMw(c)
	}
}
