package auth

import (
	stderrors "errors"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// APIError is the error half of the response envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope every endpoint answers with. Exactly one of
// Data and Error is non null, depending on Success.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

// OK wraps a payload in a success envelope.
func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Fail wraps a code and message in a failure envelope.
func Fail(code int, message string) APIResponse {
	return APIResponse{Success: false, Error: &APIError{Code: code, Message: message}}
}

// WriteData renders a 200 success envelope.
func WriteData(ctx router.Context, data any) error {
	return ctx.JSON(router.StatusOK, OK(data))
}

// WriteError maps a classified error onto a status code and renders the
// failure envelope. Unclassified faults collapse to a fixed 500 message so
// internals never leak to the caller.
func WriteError(ctx router.Context, logger Logger, err error) error {
	if logger == nil {
		logger = defLogger{}
	}

	status := http.StatusInternalServerError
	message := "An unexpected server error occurred"

	var rich *errors.Error
	if stderrors.As(err, &rich) && rich != nil {
		if rich.Code >= 400 && rich.Code < 600 {
			status = rich.Code
		}
		if status < http.StatusInternalServerError {
			message = rich.Message
		}

		logger.Error(
			"Request failed: %s (category=%s text_code=%s) %s",
			rich.Message,
			rich.Category,
			rich.TextCode,
			print.MaybePrettyJSON(rich.Metadata),
		)
	} else {
		logger.Error("Request failed with unclassified error: %v", err)
	}

	return ctx.JSON(status, Fail(status, message))
}
