package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"wagerhub/application"
	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "user_role"
	ctxClaims = "claims"
)

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if userID, ok := c.Get(ctxUserID); ok {
			fields["user_id"] = userID
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}

// Recovery turns handler panics into a 500 envelope
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"panic": fmt.Sprint(r),
					"path":  c.Request.URL.Path,
					"stack": string(debug.Stack()),
				}).Error("Recovered from handler panic")
				respondMessage(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}

// RequireAuth validates the bearer token and stores the caller's claims.
// The role comes from the users table, not the token, so a role change
// applies to tokens issued before it.
func RequireAuth(runner *application.ServiceRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			respondMessage(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		var (
			claims *entities.Claims
			role   entities.Role
		)
		err := runner.Run(c.Request.Context(), func(s *application.Services) error {
			var err error
			claims, err = s.Authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(token))
			if err != nil {
				return err
			}
			user, err := s.Auth.GetUser(c.Request.Context(), claims.UserID)
			if errors.Is(err, entities.ErrNotFound) {
				return fmt.Errorf("%w: account %d no longer exists", entities.ErrUnauthorized, claims.UserID)
			}
			if err != nil {
				return err
			}
			role = user.Role
			return nil
		})
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				respondError(c, err, "Failed to authenticate")
				return
			}
			if errors.Is(err, entities.ErrTokenRevoked) {
				respondMessage(c, http.StatusUnauthorized, "Token has been revoked")
				return
			}
			respondMessage(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, role)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequireStaff allows admins and moderators through
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentRole(c).IsStaff() {
			respondMessage(c, http.StatusForbidden, "Staff access required")
			return
		}
		c.Next()
	}
}

// RequireAdmin allows admins only
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentRole(c) != entities.RoleAdmin {
			respondMessage(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// Metrics records every request against its matched route
func Metrics(m interfaces.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// RateLimit rejects callers that exceed the limiter, keyed by client IP.
// Limiter errors let the request through.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", fmt.Sprint(int(math.Ceil(retryAfter.Seconds()))))
			respondMessage(c, http.StatusTooManyRequests, "Too many login attempts, please try again later")
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func currentRole(c *gin.Context) entities.Role {
	role, _ := c.Get(ctxRole)
	r, _ := role.(entities.Role)
	return r
}

func currentClaims(c *gin.Context) *entities.Claims {
	claims, _ := c.Get(ctxClaims)
	cl, _ := claims.(*entities.Claims)
	return cl
}
