package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// RateLimitResponse is returned when a verification code was requested too soon.
type RateLimitResponse struct {
	Error         string `json:"error"`
	TimeRemaining int    `json:"timeRemaining"`
	TraceID       string `json:"trace_id,omitempty"`
}

// SuccessResponse acknowledges an operation without returning data.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// VerifyCodeResponse acknowledges a redeemed verification code.
type VerifyCodeResponse struct {
	Success  bool `json:"success"`
	Verified bool `json:"verified"`
}

// AccountProfile is the public view of an account. Credentials are never included.
type AccountProfile struct {
	ID              string    `json:"id"`
	Role            string    `json:"role"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone"`
	VendorID        *string   `json:"vendorId,omitempty"`
	AuthMethod      string    `json:"authMethod"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

func newAccountProfile(account domain.Account) AccountProfile {
	authMethod := account.AuthMethod
	if authMethod == "" {
		authMethod = domain.AuthMethodPassword
	}
	var vendorID *string
	if id, ok := account.LinkedVendorID(); ok {
		vendorID = &id
	}
	return AccountProfile{
		ID:              account.ID,
		Role:            string(account.Role),
		Name:            account.Name,
		Email:           account.Email,
		Phone:           account.Phone,
		VendorID:        vendorID,
		AuthMethod:      authMethod,
		IsEmailVerified: account.IsEmailVerified,
		CreatedAt:       account.CreatedAt.UTC(),
	}
}

// UserResponse wraps a single account profile.
type UserResponse struct {
	User AccountProfile `json:"user"`
}

// SignupResponse describes the created account and any vendor profile.
type SignupResponse struct {
	User     AccountProfile `json:"user"`
	VendorID string         `json:"vendorId,omitempty"`
}

// LoginRequest accepts either identifier or email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// SendCodeRequest asks for a verification code of the given type.
type SendCodeRequest struct {
	Type   string `json:"type"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

// VerifyCodeRequest redeems a verification code.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	Type  string `json:"type"`
}

// SignupRequest creates a verified account.
type SignupRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
	CompanyName      string `json:"companyName"`
}

// ResetPasswordRequest confirms a password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// UpdateEmailRequest confirms an email change.
type UpdateEmailRequest struct {
	UserID   string `json:"userId"`
	NewEmail string `json:"newEmail"`
	Code     string `json:"code"`
}

// ChangePasswordRequest changes the password of an account that knows its current one.
type ChangePasswordRequest struct {
	UserID          string `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// DeleteVendorRequest removes the vendor side of an account.
type DeleteVendorRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// DeleteAccountRequest removes an account entirely.
type DeleteAccountRequest struct {
	UserID string `json:"userId"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness check results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
