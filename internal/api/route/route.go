package route

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andrew-Schwartz/typset-image/internal/api/controller"
	"github.com/Andrew-Schwartz/typset-image/internal/api/middleware"
	appctx "github.com/Andrew-Schwartz/typset-image/internal/app"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

// SetupRoutes registers the render API on r.
func SetupRoutes(r *gin.Engine, a *appctx.App) {
	r.Use(middleware.HoneybadgerMiddleware(logger.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(a.Config.Server.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "UP"})
	})

	rc := controller.NewRenderController(a.BaseCtx, a.Render, a.Cache)

	api := r.Group("")
	api.Use(middleware.RequestTimeout(a.Config.Server.RequestTimeout))

	api.POST("/render", rc.Render)
	api.POST("/recolor", rc.Recolor)
	api.GET("/artifact", rc.Artifact)
	api.GET("/backends", rc.Backends)
}
