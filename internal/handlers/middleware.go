package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
)

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger, corsOrigins []string) {
	router.Use(RequestIDMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(corsOrigins) == 0 || (len(corsOrigins) == 1 && corsOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	router.Use(gin.Recovery())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))

	router.Use(SecurityMiddleware())
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// ===== AUTHENTICATION =====

// TokenAuthMiddleware resolves bearer tokens through the auth service and
// places the user in the request context.
type TokenAuthMiddleware struct {
	auth   services.AuthService
	logger utils.Logger
}

func NewTokenAuthMiddleware(auth services.AuthService, logger utils.Logger) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{auth: auth, logger: logger}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate rejects the request with 401 before any business logic
// when the token is missing or fails verification.
func (m *TokenAuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)

		user, err := m.auth.Verify(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if !services.IsAuthError(err) {
				m.logger.Error("Token verification failed", "error", err)
				status = http.StatusInternalServerError
				err = services.ErrTokenMalformed
			}
			c.AbortWithStatusJSON(status, ErrorResponse{Message: err.Error()})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("token", token)
		c.Next()
	}
}

// AuthenticateOptional verifies a token when one is supplied but lets
// anonymous requests through. A supplied-but-invalid token still fails.
func (m *TokenAuthMiddleware) AuthenticateOptional() gin.HandlerFunc {
	authenticate := m.Authenticate()
	return func(c *gin.Context) {
		if bearerToken(c) == "" {
			c.Next()
			return
		}
		authenticate(c)
	}
}

// RequireRole restricts a route to the given roles
func (m *TokenAuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("user")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
			return
		}
		user := v.(*models.User)
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "insufficient role"})
	}
}

// ===== RATE LIMITING =====

// clientRateLimiter keeps one token bucket per client IP.
type clientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

func newClientRateLimiter(rps float64, burst int) *clientRateLimiter {
	return &clientRateLimiter{
		clients: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *clientRateLimiter) limiterFor(clientIP string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.clients[clientIP]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.clients[clientIP] = limiter
	}
	return limiter
}

// RateLimitMiddleware sheds load per client IP on sensitive route groups
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := newClientRateLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiters.limiterFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", time.Second.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Message: "too many requests"})
			return
		}
		c.Next()
	}
}
