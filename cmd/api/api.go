package main

import (
	"context"
	"errors"
	"expvar"
	"joyrentals/internal/payments"
	"joyrentals/internal/ratelimiter"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// paymentInitiator is the payment pipeline as seen by the HTTP layer.
type paymentInitiator interface {
	InitiatePayment(ctx context.Context, body []byte) (*payments.SessionResult, error)
}

type application struct {
	config      config
	logger      *zap.SugaredLogger
	payments    paymentInitiator
	resolver    *payments.Resolver
	rateLimiter ratelimiter.Limiter
}

type config struct {
	addr           string
	env            string
	frontendOrigin string
	gateway        gatewayConfig
	auth           authConfig
	rateLimiter    ratelimiter.Config
}

type gatewayConfig struct {
	timeout    time.Duration
	tokenCache bool
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

// initiations counts finished initiations by outcome; served on /v1/debug/vars.
var initiations = expvar.NewMap("phonepe_initiations")

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{app.config.frontendOrigin},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		// preflights reach the route handlers, which answer them with an empty 200
		OptionsPassthrough: true,
		AllowCredentials:   false,
		MaxAge:             300, // Maximum value not ignored by any of major browsers
	}))

	if app.config.rateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.MethodNotAllowed(app.methodNotAllowedResponse)

	// path the storefront posts to
	r.Route("/api", func(r chi.Router) {
		r.Use(app.allowFrontend)
		r.MethodNotAllowed(app.paymentMethodNotAllowedResponse)
		r.Options("/phonepe-initiate", app.preflightHandler)
		r.Post("/phonepe-initiate", app.initiatePaymentHandler)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/payments", func(r chi.Router) {
			r.Use(app.allowFrontend)
			r.MethodNotAllowed(app.paymentMethodNotAllowedResponse)
			r.Options("/initiate", app.preflightHandler)
			r.Post("/initiate", app.initiatePaymentHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:    app.config.addr,
		Handler: mux,
		// covers one token exchange plus one pay call
		WriteTimeout: app.config.gateway.timeout*2 + 10*time.Second,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
