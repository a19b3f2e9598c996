package main

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
)

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass
			if username == "" || pass == "" {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("basic auth is not configured"))
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("authorization header is missing or malformed"))
				return
			}

			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(pass)) == 1
			if !userMatch || !passMatch {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// preflights are answered without spending the client's budget
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		// RealIP has already replaced RemoteAddr when a proxy header is present
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if allow, retryAfter := app.rateLimiter.Allow(ip); !allow {
			app.rateLimitExceededResponse(w, r, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowFrontend stamps the storefront CORS headers on every payment response,
// including errors and requests that carry no Origin header.
func (app *application) allowFrontend(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", app.config.frontendOrigin)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		next.ServeHTTP(w, r)
	})
}
