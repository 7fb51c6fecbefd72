// Package web exposes the marketplace REST API.
package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/auth"
	"github.com/example/trade-marketplace/internal/cache"
	"github.com/example/trade-marketplace/internal/domain"
	favsvc "github.com/example/trade-marketplace/internal/service/favorite"
	tradesvc "github.com/example/trade-marketplace/internal/service/trade"
	"github.com/example/trade-marketplace/internal/storage"
)

const principalKey = "principal"

// Server wires the HTTP layer with the trade and favorite services.
type Server struct {
	R         *gin.Engine
	trades    *tradesvc.Service
	favorites *favsvc.Service
	users     storage.UserRepository
	tokens    *auth.TokenManager
	cache     *cache.Cache
	logger    *zap.Logger
}

// NewServer builds the router, middleware, and routes.
func NewServer(trades *tradesvc.Service, favorites *favsvc.Service, users storage.UserRepository, tokens *auth.TokenManager, c *cache.Cache, logger *zap.Logger, corsOrigin string) *Server {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()

	s := &Server{
		R:         g,
		trades:    trades,
		favorites: favorites,
		users:     users,
		tokens:    tokens,
		cache:     c,
		logger:    logger,
	}

	g.Use(s.requestLogger())
	g.Use(gin.CustomRecovery(func(cn *gin.Context, rec any) {
		logger.Error("panic recovered", zap.Any("panic", rec), zap.String("path", cn.Request.URL.Path))
		cn.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Success: false, Error: "Server Error"})
	}))
	g.Use(corsMiddleware(corsOrigin))

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })

	v1 := g.Group("/api/v1")
	v1.POST("/auth/login", s.login)

	v1.GET("/trades", s.listTrades)
	v1.GET("/trades/:id", s.getTrade)
	v1.GET("/users/:userId/trades", s.listUserTrades)
	v1.POST("/trades", s.requireAuth(), s.createTrade)
	v1.PUT("/trades/:id", s.requireAuth(), s.updateTrade)
	v1.DELETE("/trades/:id", s.requireAuth(), s.deleteTrade)

	fav := v1.Group("/favorites", s.requireAuth())
	fav.POST("", s.createFavorite)
	fav.GET("", s.listFavorites)
	fav.DELETE("/:id", s.deleteFavorite)

	return s
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(cn *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		cn.Header("X-Request-Id", requestID)
		cn.Next()
		s.logger.Info("http_request",
			zap.String("request_id", requestID),
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.String("ip", cn.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func corsMiddleware(corsOrigin string) gin.HandlerFunc {
	return func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		cn.Writer.Header().Set("Vary", "Origin")
		cn.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		cn.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		cn.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	}
}

// requireAuth resolves the bearer token to a principal and aborts with 401
// when that fails.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(cn *gin.Context) {
		header := cn.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(cn, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(cn, "invalid authorization header")
			return
		}
		userID, err := s.tokens.Parse(parts[1])
		if err != nil {
			abortUnauthorized(cn, "invalid token")
			return
		}
		u, err := s.users.GetByID(cn.Request.Context(), userID)
		if err != nil {
			abortUnauthorized(cn, "unknown user")
			return
		}
		cn.Set(principalKey, domain.Principal{ID: u.ID, Role: u.Role, TaxID: u.TaxID})
		cn.Next()
	}
}

func abortUnauthorized(cn *gin.Context, msg string) {
	cn.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Error: msg})
}

func principalFrom(cn *gin.Context) domain.Principal {
	p, _ := cn.Get(principalKey)
	principal, _ := p.(domain.Principal)
	return principal
}

func parseLimit(v string, def, min, max int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}
