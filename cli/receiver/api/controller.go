package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-API-Key"

type Controller struct {
	Handler *Handler
	router  *gin.Engine
}

// NewController собирает маршруты. Пустой список ключей отключает авторизацию.
func NewController(handler *Handler, apiKeys []string) *Controller {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", handler.Health)

	positions := router.Group("/positions", apiKeyAuth(apiKeys))
	{
		positions.GET("", handler.GetPositions)
		positions.GET("/:imei", handler.GetPosition)
	}

	return &Controller{Handler: handler, router: router}
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.router.ServeHTTP(w, r)
}

func (c *Controller) Run(port int) error {
	return c.router.Run(":" + strconv.Itoa(port))
}

func apiKeyAuth(apiKeys []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		allowed[key] = struct{}{}
	}

	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}
		if _, ok := allowed[c.GetHeader(apiKeyHeader)]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный API-ключ"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"client": c.ClientIP(),
		}).Debug("Запрос к API")
	}
}
