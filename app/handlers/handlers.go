// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/app/middleware"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
	logger    *zap.Logger
}

func newBaseHandler(logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{validator: validator.New(), logger: logger}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// parseBody binds and validates a JSON body; ok is false when a response was already written
func (h *baseHandler) parseBody(c fiber.Ctx, req any) (ok bool, err error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.validate(c, req)
}

func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	if err := h.validator.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		var validationErrors []string
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors, getValidationErrorMessage(fe))
		}
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return true, nil
}

// pathID parses a positive numeric path parameter; ok is false when a response was already written
func (h *baseHandler) pathID(c fiber.Ctx, name, errorCode string) (uint, bool, error) {
	id := utils.ParseUintParam(c.Params(name))
	if id == 0 {
		return 0, false, h.ErrorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name), errorCode, nil)
	}
	return id, true, nil
}

func (h *baseHandler) userID(c fiber.Ctx) (uint, bool, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return 0, false, h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	return userID, true, nil
}

func (h *baseHandler) advertiserID(c fiber.Ctx) (uint, bool, error) {
	advertiserID, ok := middleware.GetAdvertiserIDFromContext(c)
	if !ok {
		return 0, false, h.ErrorResponse(c, fiber.StatusUnauthorized, "Advertiser ID not found in context", "MISSING_ADVERTISER_ID", nil)
	}
	return advertiserID, true, nil
}

// FlowErrorResponse maps a business error to its HTTP status.
// Errors outside the taxonomy become a 500 carrying the flow's failure code and no details.
func (h *baseHandler) FlowErrorResponse(c fiber.Ctx, err error, failureMessage, failureCode string) error {
	code := businessflow.ErrorCode(err)
	message := failureMessage
	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Message != "" {
		message = be.Message
	}

	switch {
	case businessflow.IsValidation(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, message, code, err.Error())
	case businessflow.IsNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, message, code, nil)
	case businessflow.IsDuplicate(err), businessflow.IsCapacity(err), businessflow.IsConflict(err):
		return h.ErrorResponse(c, fiber.StatusConflict, message, code, nil)
	case businessflow.IsNotAdOwner(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, message, code, nil)
	case businessflow.IsUnauthorized(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, message, code, nil)
	}

	h.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("code", code),
		zap.Error(err),
	)
	if code == "" {
		code = failureCode
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, failureMessage, code, nil)
}

// createRequestContext detaches flow work from the connection and bounds it by the request timeout
func createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, utils.RequestTimeout)
	return ctx, cancel
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	} else if requestID := c.GetRespHeader("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
