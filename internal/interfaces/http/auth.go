package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// tokenCookie is read when no Authorization header is sent
const tokenCookie = "token"

// Administrator is the session used when no signing secret is configured
var Administrator = entity.SessionUser{
	Email:    "Administrator",
	FullName: "Administrator",
	UserType: entity.UserTypeSystem,
}

// SessionClaims are the JWT claims identifying a desk user. The subject is the user's email.
type SessionClaims struct {
	Name     string `json:"name,omitempty"`
	UserType string `json:"user_type,omitempty"`
	jwt.RegisteredClaims
}

// Auth issues and verifies HS256 session tokens
type Auth struct {
	secret []byte
	logger Logger
}

// NewAuth creates an authenticator. An empty secret switches the desk into
// development mode where every request runs as Administrator.
func NewAuth(secret string, logger Logger) *Auth {
	return &Auth{secret: []byte(secret), logger: logger}
}

// Enabled reports whether tokens are required
func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// IssueToken signs a session token for user valid for ttl
func (a *Auth) IssueToken(user entity.SessionUser, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := SessionClaims{
		Name:     user.FullName,
		UserType: user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken verifies tokenString and returns the user it identifies
func (a *Auth) ParseToken(tokenString string) (*entity.SessionUser, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	user := &entity.SessionUser{
		Email:    claims.Subject,
		FullName: claims.Name,
		UserType: claims.UserType,
	}
	if user.UserType == "" {
		user.UserType = entity.UserTypeWebsite
	}
	return user, nil
}

// Middleware attaches the session user to the request context
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			admin := Administrator
			c.Request = c.Request.WithContext(service.WithSessionUser(c.Request.Context(), &admin))
			c.Next()
			return
		}

		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString, _ = c.Cookie(tokenCookie)
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "missing session token"})
			return
		}

		user, err := a.ParseToken(tokenString)
		if err != nil {
			a.logger.Info("Rejected session token", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid or expired session token"})
			return
		}

		c.Request = c.Request.WithContext(service.WithSessionUser(c.Request.Context(), user))
		c.Next()
	}
}

// RequireSystemUser rejects website users
func RequireSystemUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := service.SessionUserFrom(c.Request.Context())
		if user == nil || user.UserType != entity.UserTypeSystem {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{Success: false, Error: "not permitted"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
