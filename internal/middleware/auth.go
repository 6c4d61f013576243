package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/requestdata"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// authenticate resolves the request token into request data on the context.
// It aborts the request itself and reports whether the caller may continue.
func (am *AuthMiddleware) authenticate(c *gin.Context) bool {
  tokenString := extractTokenFromAll(c)
  if tokenString == "" {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return false
  }
  ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
  if err != nil {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
    return false
  }
  c.Request = c.Request.WithContext(ctx)
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden - invalid user id"})
    return false
  }
  return true
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    if !am.authenticate(c) {
      return
    }
    c.Next()
  }
}

func (am *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
  return func(c *gin.Context) {
    if !am.authenticate(c) {
      return
    }
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "request data missing"})
      return
    }
    allowed := false
    for _, role := range roles {
      if rd.Role == role {
        allowed = true
        break
      }
    }
    if !allowed {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
      return
    }
    c.Next()
  }
}

// extractTokenFromAll checks the query string first so websocket clients can
// authenticate, then falls back to the Authorization header.
func extractTokenFromAll(c *gin.Context) string {
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}
