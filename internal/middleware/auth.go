// auth.go
package middleware

import (
	"net/http"

	"billing-service/internal/service"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth valida el header X-API-Key contra las empresas registradas
// y deja la empresa resuelta en el contexto. La key es opaca: existe o no.
func APIKeyAuth(companies *service.CompanyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "falta el header X-API-Key"})
			c.Abort()
			return
		}

		company, err := companies.Authenticate(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "API key inválida"})
			c.Abort()
			return
		}

		c.Set("company", company)
		c.Set("companyEmail", company.Email)
		c.Next()
	}
}
