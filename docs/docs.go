// Package docs embeds the OpenAPI description served at /docs/openapi.json.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const SpecPath = "/docs/openapi.json"

//go:embed openapi.json
var OpenAPI []byte

// Register serves the raw document and the Swagger UI that renders it.
func Register(router gin.IRoutes) {
	router.GET(SpecPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", OpenAPI)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SpecPath))))
}
