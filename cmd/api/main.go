package main

import (
	"expvar"
	"fmt"
	"joyrentals/internal/payments"
	"joyrentals/internal/ratelimiter"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 20
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil && parsedVal > 0 {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// LoadGatewayConfig reads the HTTP client settings used for PhonePe calls.
// Merchant credentials are not read here; the payments resolver reads them on
// every initiation.
func LoadGatewayConfig() gatewayConfig {
	cfg := gatewayConfig{timeout: 15 * time.Second}

	if val := os.Getenv("GATEWAY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.timeout = d
		} else {
			fmt.Println("Invalid GATEWAY_TIMEOUT, defaulting to", cfg.timeout)
		}
	}
	if val := os.Getenv("PHONEPE_TOKEN_CACHE"); val != "" {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			cfg.tokenCache = parsedVal
		} else {
			fmt.Println("Invalid PHONEPE_TOKEN_CACHE, defaulting to", cfg.tokenCache)
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// NewLogger creates a new zap logger with color.
func NewLogger(level zapcore.Level) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	return zap.New(core).Sugar()
}

var version = "1.0.0"

func main() {
	// .env is optional; hosted deployments inject variables directly
	envFileErr := godotenv.Load()

	level := zapcore.InfoLevel
	if err := level.Set(getenv("LOG_LEVEL", "info")); err != nil {
		level = zapcore.InfoLevel
	}
	logger := NewLogger(level)
	defer logger.Sync()

	if envFileErr != nil {
		logger.Infow("no .env file loaded", "reason", envFileErr.Error())
	}

	cfg := config{
		addr:           getenv("ADDR", ":8080"),
		env:            getenv("ENV", "development"),
		frontendOrigin: strings.TrimRight(getenv("FRONTEND_ORIGIN", "https://joyrentals.store"), "/"),
		gateway:        LoadGatewayConfig(),
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	httpClient := &http.Client{Timeout: cfg.gateway.timeout}

	resolver := payments.NewResolver(os.Getenv, httpClient)
	if cfg.gateway.tokenCache {
		resolver.TokenCache = payments.NewTokenCache(time.Minute)
	}

	// Fail loudly at start-up, but keep serving: credentials are read again on
	// every request and may be fixed without a restart.
	if _, err := resolver.Resolve(); err != nil {
		logger.Warnw("phonepe credentials incomplete", "mode", resolver.Mode(), "error", err.Error())
	}

	manager := payments.NewPaymentManager(
		resolver,
		payments.NewSessionRequester(httpClient),
		cfg.frontendOrigin+"/phonepe-redirect.html",
		logger,
	)

	app := &application{
		config:      cfg,
		logger:      logger,
		payments:    manager,
		resolver:    resolver,
		rateLimiter: ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
