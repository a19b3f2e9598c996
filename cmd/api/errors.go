package main

import (
	"errors"
	"fmt"
	"joyrentals/internal/payments"
	"net/http"
	"time"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSON(w, http.StatusInternalServerError, &errorEnvelope{
		Error:   "Server error",
		Details: err.Error(),
	})
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("method not allowed", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// paymentMethodNotAllowedResponse is the 405 for the initiation routes, which
// accept only POST and OPTIONS.
func (app *application) paymentMethodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("method not allowed", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusMethodNotAllowed, "Only POST allowed")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", fmt.Sprint(seconds))

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+fmt.Sprint(seconds)+"s")
}

// paymentErrorResponse maps a failed initiation onto the storefront contract.
func (app *application) paymentErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *payments.ValidationError
		configErr     *payments.ConfigurationError
		authErr       *payments.AuthError
		gatewayErr    *payments.GatewayError
	)

	switch {
	case errors.As(err, &validationErr):
		initiations.Add("invalid", 1)
		if errors.Is(err, payments.ErrMissingAmount) {
			app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())
			writeJSONError(w, http.StatusBadRequest, "Amount is required")
			return
		}
		app.badRequestResponse(w, r, validationErr)

	case errors.As(err, &configErr):
		initiations.Add("misconfigured", 1)
		app.logger.Errorw("phonepe not configured", "path", r.URL.Path, "error", configErr.Error())
		writeJSONError(w, http.StatusInternalServerError, configErr.Error())

	case errors.As(err, &authErr):
		initiations.Add("auth_failed", 1)
		app.logger.Errorw("phonepe auth failed", "path", r.URL.Path, "status", authErr.Status, "error", authErr.Error())
		writeJSON(w, http.StatusInternalServerError, &errorEnvelope{
			Error: "Failed to get PhonePe auth token",
			Raw:   authErr.Raw,
		})

	case errors.As(err, &gatewayErr):
		initiations.Add("rejected", 1)
		app.logger.Warnw("phonepe returned no redirect", "path", r.URL.Path, "status", gatewayErr.Status, "error", gatewayErr.Error())
		writeJSON(w, http.StatusBadRequest, &errorEnvelope{
			Error: "No redirect URL from PhonePe",
			Raw:   gatewayErr.Raw,
		})

	default:
		initiations.Add("error", 1)
		app.internalServerError(w, r, err)
	}
}
