package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/usecase"
)

// AccountFlows is the use case surface behind account management endpoints.
type AccountFlows interface {
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	ChangePassword(ctx context.Context, in usecase.ChangePasswordInput) error
	DeleteVendorAccount(ctx context.Context, in usecase.DeleteVendorInput) error
	DeleteAccount(ctx context.Context, userID string) error
}

// AccountHandler exposes account lookup, password change and deletion.
type AccountHandler struct {
	accounts AccountFlows
}

func NewAccountHandler(accounts AccountFlows) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

var accountNotFound = ErrorCase{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "user not found"}

// RegisterRoutes binds /auth account routes.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup, verify ...gin.HandlerFunc) {
	r.GET("/users/:id", h.getAccount)
	r.POST("/change-password", chain(verify, h.changePassword)...)
	r.DELETE("/delete-account", h.deleteAccount)
}

// RegisterVendorRoutes binds /vendor routes.
func (h *AccountHandler) RegisterVendorRoutes(r *gin.RouterGroup, verify ...gin.HandlerFunc) {
	r.POST("/delete-account", chain(verify, h.deleteVendorAccount)...)
}

// GetAccount godoc
// @Summary Get an account profile
// @Tags Account
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/users/{id} [get]
func (h *AccountHandler) getAccount(c *gin.Context) {
	account, err := h.accounts.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, withValidation(accountNotFound), http.StatusInternalServerError, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, UserResponse{User: newAccountProfile(*account)})
}

// ChangePassword godoc
// @Summary Change password
// @Description Verifies the current password, then sets the new one on the account and its linked vendor profile.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Change password request payload"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/change-password [post]
func (h *AccountHandler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid change-password payload"))
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), usecase.ChangePasswordInput{
		UserID:          req.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		RespondWithMappedError(c, err, withValidation(
			accountNotFound,
			ErrorCase{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
		), http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteVendorAccount godoc
// @Summary Delete the vendor side of an account
// @Description Consumes a delete-vendor-account code, removes the vendor profile and catalog and demotes the account to customer.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body DeleteVendorRequest true "Delete vendor request payload"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /vendor/delete-account [post]
func (h *AccountHandler) deleteVendorAccount(c *gin.Context) {
	var req DeleteVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid delete-account payload"))
		return
	}

	err := h.accounts.DeleteVendorAccount(c.Request.Context(), usecase.DeleteVendorInput{
		UserID: req.UserID,
		Code:   req.Code,
	})
	if err != nil {
		RespondWithMappedError(c, err, withValidation(
			accountNotFound,
			ErrorCase{Err: usecase.ErrNotVendor, Status: http.StatusForbidden, Message: "account is not a vendor"},
		), http.StatusInternalServerError, "failed to delete vendor account")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteAccount godoc
// @Summary Delete an account
// @Description Removes the account with its vendor, customer data and pending codes. userId may be sent in the body or the query string.
// @Tags Account
// @Accept json
// @Produce json
// @Param userId query string false "Account ID"
// @Param request body DeleteAccountRequest false "Delete account request payload"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/delete-account [delete]
func (h *AccountHandler) deleteAccount(c *gin.Context) {
	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid delete-account payload"))
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = strings.TrimSpace(c.Query("userId"))
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "userId is required"))
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), userID); err != nil {
		RespondWithMappedError(c, err, withValidation(accountNotFound), http.StatusInternalServerError, "failed to delete account")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
