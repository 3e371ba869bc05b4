package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/internal/config"
)

// SetupRouter builds the REST API over the given repository.
func SetupRouter(subjects repositories.SubjectRepository, cfg *config.Config) *gin.Engine {
	router := gin.Default()
	if len(cfg.Rest.AllowedOrigins) > 0 {
		router.Use(cors.New(getCustomCorsConfig(cfg.Rest.AllowedOrigins)))
	}

	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))

	v1 := router.Group("/api/v1")
	registerSubjectRoutes(v1, NewSubjectHandler(subjects))

	return router
}

func registerSubjectRoutes(group *gin.RouterGroup, h *SubjectHandler) {
	subject := group.Group("/subjects")
	{
		subject.GET("", h.HandleListSubjects)
		subject.GET("/all", h.HandleAllSubjects)
		subject.GET("/count", h.HandleCountSubjects)
		subject.POST("", h.HandleCreateSubject)
		subject.POST("/batch", h.HandleCreateSubjects)
		subject.DELETE("/batch", h.HandleDeleteSubjects)
		subject.GET("/:id", h.HandleGetSubject)
		subject.HEAD("/:id", h.HandleSubjectExists)
		subject.PUT("/:id", h.HandleUpdateSubject)
		subject.DELETE("/:id", h.HandleDeleteSubject)
	}
}

func getCustomCorsConfig(origins []string) cors.Config {
	config := DefaultConfig()
	if slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}

// DefaultConfig returns a generic default configuration without any allowed origin.
func DefaultConfig() cors.Config {
	return cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Access-Control-Allow-Origin", "Origin", "Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}
