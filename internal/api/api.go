// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/api/handlers"
	"github.com/andresuchdata/stockcast/internal/api/middleware"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	PredictionService *service.PredictionService

	// Now overrides the reference clock for prediction runs; nil uses time.Now.
	Now func() time.Time
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins, allowAll := normalizeAllowedOrigins(allowedOrigins); allowAll {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	} else if len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.PredictionService != nil {
		predictionHandler := handlers.NewPredictionHandler(services.PredictionService)
		if services.Now != nil {
			predictionHandler.WithClock(services.Now)
		}

		predictionGroup := apiGroup.Group("/predictions")
		{
			predictionGroup.POST("/run", predictionHandler.RunPrediction)
			predictionGroup.GET("", predictionHandler.GetPredictions)
			predictionGroup.GET("/summary", predictionHandler.GetSummary)
			predictionGroup.GET("/archives", predictionHandler.GetArchives)
		}
	}

	return router
}

// normalizeAllowedOrigins flattens comma-separated origin lists. A "*" entry
// allows every origin.
func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			switch trimmed {
			case "":
			case "*":
				allowAll = true
			default:
				parsed = append(parsed, trimmed)
			}
		}
	}
	return parsed, allowAll
}
