package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/adapter/dto/common"
	httpmw "github.com/johnquangdev/meeting-notes/internal/infrastructure/http/middleware"
)

const internalErrorMessage = "Internal server error"

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes data with the given status and logs the response
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}
	return c.JSON(status, data)
}

// HandleError centralizes error handling and logging. Messages of 5xx errors
// are replaced by a generic one; the cause only goes to the log.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	status, body := errorBody(err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int32("app_code", body.Code),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Warn("http.response.error", fields...)
		}
	}

	return c.JSON(status, body)
}

func errorBody(err error) (int, common.ErrorResponse) {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.HTTPCode >= http.StatusInternalServerError {
			msg = internalErrorMessage
		}
		return appErr.HTTPCode, common.ErrorResponse{Code: int32(appErr.Code), Error: msg}
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		code := errors.ErrorCode_INVALID_ARGUMENT
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			code = errors.ErrorCode_NOT_FOUND
		case http.StatusUnauthorized:
			code = errors.ErrorCode_UNAUTHENTICATED
		case http.StatusTooManyRequests:
			code = errors.ErrorCode_RATE_LIMITED
		}
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok && s != "" {
			msg = s
		}
		return httpErr.Code, common.ErrorResponse{Code: int32(code), Error: msg}
	}

	return http.StatusInternalServerError, common.ErrorResponse{
		Code:  int32(errors.ErrorCode_INTERNAL),
		Error: internalErrorMessage,
	}
}

// NewHTTPErrorHandler renders errors returned by handlers and middleware in
// the same shape as HandleError
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			status, _ := errorBody(err)
			_ = c.NoContent(status)
			return
		}
		_ = HandleError(logger, c, err)
	}
}

// CurrentUserID returns the caller set by the auth middleware
func CurrentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(httpmw.ContextKeyUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return id, nil
}
