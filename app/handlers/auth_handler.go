package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/app/services"
	"go.uber.org/zap"
)

// AuthHandlerInterface defines the contract for token endpoints.
// Tokens are issued by the identity provider; this service only rotates them.
type AuthHandlerInterface interface {
	Refresh(c fiber.Ctx) error
}

// AuthHandler rotates user and advertiser token pairs
type AuthHandler struct {
	baseHandler
	tokens services.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokens services.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(logger),
		tokens:      tokens,
	}
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenPairResponse}
// @Failure 401 {object} dto.APIResponse "Invalid or expired refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	subject := services.SubjectUser
	if req.Principal == "advertiser" {
		subject = services.SubjectAdvertiser
	}

	access, refresh, err := h.tokens.RefreshToken(subject, req.RefreshToken)
	if err != nil {
		code := "INVALID_REFRESH_TOKEN"
		if errors.Is(err, services.ErrTokenExpired) {
			code = "REFRESH_TOKEN_EXPIRED"
		}
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Refresh token rejected", code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tokens refreshed", dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	})
}
