package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
	"github.com/danielolamide0/WurldMarket-sub001/internal/usecase"
)

// AuthFlows is the use case surface behind the /auth endpoints.
type AuthFlows interface {
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	SendCode(ctx context.Context, in usecase.SendCodeInput) error
	VerifyCode(ctx context.Context, email, code, purpose string) error
	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.SignupResult, error)
	ResetPassword(ctx context.Context, in usecase.ResetPasswordInput) error
	UpdateEmail(ctx context.Context, in usecase.UpdateEmailInput) (*domain.Account, error)
}

// AuthRouteMiddlewares groups the per-endpoint middleware chains, typically rate limits.
// Verify guards every endpoint that accepts a verification code.
type AuthRouteMiddlewares struct {
	Login    []gin.HandlerFunc
	SendCode []gin.HandlerFunc
	Verify   []gin.HandlerFunc
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth   AuthFlows
	logger *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth AuthFlows, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: log}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, mw AuthRouteMiddlewares) {
	r.POST("/login", chain(mw.Login, h.login)...)
	r.POST("/send-code", chain(mw.SendCode, h.sendCode)...)
	r.POST("/verify-code", chain(mw.Verify, h.verifyCode)...)
	r.POST("/signup", chain(mw.Verify, h.signup)...)
	r.POST("/reset-password", chain(mw.Verify, h.resetPassword)...)
	r.POST("/update-email", chain(mw.Verify, h.updateEmail)...)
}

func chain(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	handlers = append(handlers, middlewares...)
	return append(handlers, handler)
}

// Login godoc
// @Summary Log in with email and password
// @Description Verifies the password against the account and any linked vendor credential. Plaintext credentials are migrated to hashes on success. Unclaimed vendor profiles are converted into accounts on first login.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request payload"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	email := req.Email
	if strings.TrimSpace(email) == "" {
		email = req.Identifier
	}

	account, err := h.auth.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, withValidation(
			ErrorCase{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		), http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: newAccountProfile(*account)})
}

// SendCode godoc
// @Summary Send a verification code
// @Description Issues a six digit code for signup, password-reset, email-change or delete-vendor-account. Password reset requests for unknown emails report success without sending.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body SendCodeRequest true "Send code request payload"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} RateLimitResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/send-code [post]
func (h *AuthHandler) sendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid send-code payload"))
		return
	}

	err := h.auth.SendCode(c.Request.Context(), usecase.SendCodeInput{
		Purpose: req.Type,
		Email:   req.Email,
		UserID:  req.UserID,
	})
	if err != nil {
		var limited *usecase.RateLimitedError
		if errors.As(err, &limited) {
			seconds := limited.Seconds()
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, RateLimitResponse{
				Error:         "please wait before requesting another code",
				TimeRemaining: seconds,
				TraceID:       traceID(c),
			})
			return
		}
		if errors.Is(err, usecase.ErrCodeDeliveryFailed) {
			h.logger.Error("verification code dispatch failed",
				zap.String("type", req.Type),
				zap.String("email", logger.MaskEmail(req.Email)),
				zap.Error(err),
			)
		}

		RespondWithMappedError(c, err, withValidation(
			ErrorCase{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			ErrorCase{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "user not found"},
			ErrorCase{Err: usecase.ErrNotVendor, Status: http.StatusForbidden, Message: "account is not a vendor"},
		), http.StatusInternalServerError, "failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// VerifyCode godoc
// @Summary Redeem a verification code
// @Description Validates and consumes a code in one step.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body VerifyCodeRequest true "Verify code request payload"
// @Success 200 {object} VerifyCodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/verify-code [post]
func (h *AuthHandler) verifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verify-code payload"))
		return
	}

	if err := h.auth.VerifyCode(c.Request.Context(), req.Email, req.Code, req.Type); err != nil {
		RespondWithMappedError(c, err, validationCases, http.StatusInternalServerError, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, VerifyCodeResponse{Success: true, Verified: true})
}

// Signup godoc
// @Summary Create a verified account
// @Description Consumes a signup code and creates the account with its customer or vendor profile.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request payload"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload"))
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Email:       req.Email,
		Code:        req.VerificationCode,
		Password:    req.Password,
		Name:        req.Name,
		Phone:       req.Phone,
		Role:        req.Role,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		RespondWithMappedError(c, err, withValidation(
			ErrorCase{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			ErrorCase{Err: usecase.ErrSlugTaken, Status: http.StatusConflict, Message: "a store with this company name already exists"},
		), http.StatusInternalServerError, "signup failed")
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		User:     newAccountProfile(result.Account),
		VendorID: result.VendorID,
	})
}

// ResetPassword godoc
// @Summary Reset a forgotten password
// @Description Consumes a password-reset code and sets the new password on the account and its linked vendor profile.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset password request payload"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset-password payload"))
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), usecase.ResetPasswordInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		RespondWithMappedError(c, err, withValidation(
			ErrorCase{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "user not found"},
		), http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// UpdateEmail godoc
// @Summary Change the account email
// @Description Consumes an email-change code sent to the new address and switches the account to it.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body UpdateEmailRequest true "Update email request payload"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/update-email [post]
func (h *AuthHandler) updateEmail(c *gin.Context) {
	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update-email payload"))
		return
	}

	account, err := h.auth.UpdateEmail(c.Request.Context(), usecase.UpdateEmailInput{
		UserID:   req.UserID,
		NewEmail: req.NewEmail,
		Code:     req.Code,
	})
	if err != nil {
		RespondWithMappedError(c, err, withValidation(
			ErrorCase{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "user not found"},
			ErrorCase{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		), http.StatusInternalServerError, "failed to update email")
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: newAccountProfile(*account)})
}

func traceID(c *gin.Context) string {
	v, _ := c.Get("trace_id")
	id, _ := v.(string)
	return id
}
