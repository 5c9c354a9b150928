package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	authUserIDKey       = "authUserID"
	allowUserIDParamKey = "allowUserIDParam"

	UserIDHeader = "X-User-ID"
)

// userIDClaims are the claim names that may carry the numeric user id, in
// lookup order.
var userIDClaims = []string{"user_id", "userId", "id", "sub"}

// Identity authenticates requests carrying a bearer token. Requests without
// one pass through; handlers decide whether an explicit user id is accepted.
func Identity(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.Auth.JWTSecret)
	allowParam := cfg.Auth.AllowUserIDParam

	return func(c *gin.Context) {
		c.Set(allowUserIDParamKey, allowParam)

		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abortUnauthenticated(c, "authorization header must be 'Bearer <token>'")
			return
		}
		if len(secret) == 0 {
			log.Warn().Msg("Identity: Bearer token received but JWT_SECRET is not configured")
			abortUnauthenticated(c, "token authentication is not configured")
			return
		}

		userID, err := ParseUserToken(strings.TrimSpace(token), secret)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Identity: Rejected bearer token")
			abortUnauthenticated(c, "invalid or expired token")
			return
		}
		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// ParseUserToken verifies an HMAC signed token and returns its user id.
func ParseUserToken(tokenString string, secret []byte) (uint, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return 0, err
	}

	for _, name := range userIDClaims {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if v > 0 && v == float64(uint(v)) {
				return uint(v), nil
			}
		case string:
			if id, err := strconv.ParseUint(v, 10, 32); err == nil && id > 0 {
				return uint(id), nil
			}
		}
		return 0, fmt.Errorf("claim %q is not a positive integer user id", name)
	}
	return 0, errors.New("token carries no user id claim")
}

// AuthenticatedUserID returns the user id proven by a bearer token.
func AuthenticatedUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(authUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// ResolveUserID picks the acting user. A token always wins, and a different
// explicit id next to it is refused. Without a token an explicit id from the
// user_id query parameter, the X-User-ID header or the body is accepted when
// AUTH_ALLOW_USER_ID_PARAM is on.
func ResolveUserID(c *gin.Context, bodyUserID *uint) (uint, error) {
	claimed, err := claimedUserID(c, bodyUserID)
	if err != nil {
		return 0, err
	}

	if authID, ok := AuthenticatedUserID(c); ok {
		if claimed != 0 && claimed != authID {
			return 0, service.ErrForbidden
		}
		return authID, nil
	}

	if claimed == 0 {
		return 0, &service.Error{Kind: service.KindUnauthenticated, Message: "user id is required"}
	}
	if allow, _ := c.Get(allowUserIDParamKey); allow != true {
		return 0, &service.Error{Kind: service.KindUnauthenticated, Message: "a bearer token is required"}
	}
	return claimed, nil
}

func claimedUserID(c *gin.Context, bodyUserID *uint) (uint, error) {
	for _, raw := range []string{c.Query("user_id"), c.GetHeader(UserIDHeader)} {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return 0, &service.Error{Kind: service.KindBadRequest, Message: "invalid user id"}
		}
		return uint(id), nil
	}
	if bodyUserID != nil && *bodyUserID > 0 {
		return *bodyUserID, nil
	}
	return 0, nil
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Status:  "fail",
		Code:    string(service.KindUnauthenticated),
		Message: message,
	})
}
