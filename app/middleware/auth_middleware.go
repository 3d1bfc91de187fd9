// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/app/services"
)

// Locals keys set by the authentication middleware
const (
	UserIDKey       = "user_id"
	AdvertiserIDKey = "advertiser_id"
	TokenIDKey      = "token_id"
	RequestIDKey    = "request_id"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate requires a user access token and stores the user id in locals
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return m.authenticate(services.SubjectUser, UserIDKey)
}

// AdvertiserAuthenticate requires an advertiser access token and stores the advertiser id in locals
func (m *AuthMiddleware) AdvertiserAuthenticate() fiber.Handler {
	return m.authenticate(services.SubjectAdvertiser, AdvertiserIDKey)
}

func (m *AuthMiddleware) authenticate(subject services.Subject, localsKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, code, message := bearerToken(c.Get("Authorization"))
		if code != "" {
			return unauthorized(c, message, code)
		}

		claims, err := m.tokenService.ValidateToken(subject, token)
		if err != nil {
			code, message := tokenErrorCode(err)
			return unauthorized(c, message, code)
		}
		if claims.TokenType != services.TokenTypeAccess {
			return unauthorized(c, "Refresh tokens cannot be used for API access", "TOKEN_INVALID")
		}

		c.Locals(localsKey, claims.SubjectID)
		c.Locals(TokenIDKey, claims.TokenID)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(RequestIDKey, requestID)
		}

		return c.Next()
	}
}

func bearerToken(header string) (token, code, message string) {
	if header == "" {
		return "", "MISSING_AUTHORIZATION_HEADER", "Authorization header is required"
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'"
	}
	token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", "MISSING_ACCESS_TOKEN", "Access token is required"
	}
	return token, "", ""
}

func tokenErrorCode(err error) (code, message string) {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return "TOKEN_EXPIRED", "Access token has expired"
	case errors.Is(err, services.ErrTokenWrongSubject):
		return "TOKEN_WRONG_SUBJECT", "Access token was not issued for this area"
	case errors.Is(err, services.ErrTokenInvalid):
		return "TOKEN_INVALID", "Invalid access token"
	default:
		return "TOKEN_VALIDATION_FAILED", "Token validation failed"
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(UserIDKey).(uint)
	return userID, ok && userID != 0
}

// GetAdvertiserIDFromContext extracts the advertiser ID from the request context
func GetAdvertiserIDFromContext(c fiber.Ctx) (uint, bool) {
	advertiserID, ok := c.Locals(AdvertiserIDKey).(uint)
	return advertiserID, ok && advertiserID != 0
}
