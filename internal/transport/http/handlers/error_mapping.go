package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielolamide0/WurldMarket-sub001/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
// An empty Message echoes the error text, which carries the validation detail.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			msg := cs.Message
			if msg == "" {
				msg = err.Error()
			}
			c.JSON(cs.Status, NewErrorResponse(c, msg))
			return
		}
	}

	// Recorded on the context so the access log reports the cause.
	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// validationCases are shared by every endpoint that accepts user input.
var validationCases = []ErrorCase{
	{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest},
	{Err: usecase.ErrInvalidEmail, Status: http.StatusBadRequest, Message: "a valid email is required"},
	{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest},
	{Err: usecase.ErrUnknownPurpose, Status: http.StatusBadRequest, Message: "invalid verification type"},
	{Err: usecase.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid or expired verification code"},
}

func withValidation(cases ...ErrorCase) []ErrorCase {
	return append(append([]ErrorCase{}, validationCases...), cases...)
}
