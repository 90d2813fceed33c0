package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
)

const (
	ctxEmployeeKey = "employee"
	ctxTokenKey    = "token"
)

// RequireSession enforces a bearer session token and stores the resolved
// employee on the context.
func RequireSession(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		emp, err := a.Validate(c.Request.Context(), tokenStr)
		if err != nil {
			status := apperror.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				log.Printf("validate token: %v", err)
			}
			c.AbortWithStatusJSON(status, gin.H{"error": apperror.Message(err)})
			return
		}
		c.Set(ctxEmployeeKey, emp)
		c.Set(ctxTokenKey, tokenStr)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return "", false
	}
	tokenStr := strings.TrimSpace(authz[len("bearer "):])
	return tokenStr, tokenStr != ""
}

// CurrentEmployee returns the employee set by RequireSession.
func CurrentEmployee(c *gin.Context) (model.Employee, bool) {
	v, ok := c.Get(ctxEmployeeKey)
	if !ok {
		return model.Employee{}, false
	}
	emp, ok := v.(model.Employee)
	return emp, ok
}

// CurrentToken returns the raw token validated by RequireSession.
func CurrentToken(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}
