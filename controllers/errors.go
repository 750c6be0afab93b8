package controllers

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/services"
)

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("__config").(*config.Config)
	return ok && cfg.IsProduction()
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// internalError reports err and answers 500. The raw error is only exposed
// outside production.
func internalError(c echo.Context, message string, err error) error {
	logging.FromContext(c.Request().Context()).Error(message, "error", err)
	sentry.CaptureException(err)
	body := map[string]string{"error": message}
	if !isProduction(c) {
		body["detail"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}

// providerError answers 502 for AI and weather provider failures.
func providerError(c echo.Context, message string, err error) error {
	logger := logging.FromContext(c.Request().Context())
	if services.IsProviderUnavailable(err) {
		logger.Warn(message, "error", err, "retryable", true)
	} else {
		logger.Error(message, "error", err)
		sentry.CaptureException(err)
	}
	return c.JSON(http.StatusBadGateway, map[string]string{"error": message})
}
