package payments

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Endpoints overrides gateway hosts. The zero value keeps the PhonePe defaults.
type Endpoints struct {
	ChecksumBaseURL string
	TokenAuthURL    string
	TokenPayBaseURL string
}

// Resolver reads merchant credentials for the configured auth mode and builds
// the matching Protocol. Values are read on every Resolve so that rotated
// secrets take effect without a restart.
type Resolver struct {
	Lookup     func(string) string
	HTTPClient *http.Client
	// TokenCache is shared by token-mode initiations when set.
	TokenCache *TokenCache
	Endpoints  Endpoints
}

func NewResolver(lookup func(string) string, client *http.Client) *Resolver {
	if lookup == nil {
		lookup = os.Getenv
	}
	return &Resolver{Lookup: lookup, HTTPClient: client}
}

func (r *Resolver) get(name string) string {
	return strings.TrimSpace(r.Lookup(name))
}

// Mode is the configured auth mode, "token" unless PHONEPE_AUTH_MODE says otherwise.
func (r *Resolver) Mode() string {
	mode := strings.ToLower(r.get("PHONEPE_AUTH_MODE"))
	if mode == "" {
		return ModeToken
	}
	return mode
}

// Environment is PROD only when PHONEPE_ENV says so; anything else is TEST.
func (r *Resolver) Environment() Environment {
	if strings.ToUpper(r.get("PHONEPE_ENV")) == string(EnvProd) {
		return EnvProd
	}
	return EnvTest
}

func (r *Resolver) Resolve() (Protocol, error) {
	switch mode := r.Mode(); mode {
	case ModeToken:
		return r.resolveToken()
	case ModeChecksum:
		return r.resolveChecksum()
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown PHONEPE_AUTH_MODE %q", mode)}
	}
}

func (r *Resolver) resolveToken() (Protocol, error) {
	clientID := r.get("PHONEPE_CLIENT_ID")
	clientVersion := r.get("PHONEPE_CLIENT_VERSION")
	clientSecret := r.get("PHONEPE_CLIENT_SECRET")

	if missing := missingVars(map[string]string{
		"PHONEPE_CLIENT_ID":      clientID,
		"PHONEPE_CLIENT_VERSION": clientVersion,
		"PHONEPE_CLIENT_SECRET":  clientSecret,
	}, "PHONEPE_CLIENT_ID", "PHONEPE_CLIENT_VERSION", "PHONEPE_CLIENT_SECRET"); len(missing) > 0 {
		return nil, &ConfigurationError{Kind: "client", Missing: missing}
	}

	adapter := NewTokenAdapter(clientID, clientVersion, clientSecret, r.Environment(), r.HTTPClient)
	adapter.AuthURL = r.Endpoints.TokenAuthURL
	adapter.PayBaseURL = r.Endpoints.TokenPayBaseURL
	if r.TokenCache != nil {
		adapter.WithCache(r.TokenCache)
	}
	return adapter, nil
}

func (r *Resolver) resolveChecksum() (Protocol, error) {
	merchantID := r.get("PHONEPE_MERCHANT_ID")
	saltKey := r.get("PHONEPE_SALT_KEY")

	if missing := missingVars(map[string]string{
		"PHONEPE_MERCHANT_ID": merchantID,
		"PHONEPE_SALT_KEY":    saltKey,
	}, "PHONEPE_MERCHANT_ID", "PHONEPE_SALT_KEY"); len(missing) > 0 {
		return nil, &ConfigurationError{Kind: "merchant", Missing: missing}
	}

	adapter := NewChecksumAdapter(merchantID, saltKey, r.get("PHONEPE_SALT_INDEX"), r.Environment())
	adapter.BaseURL = r.Endpoints.ChecksumBaseURL
	return adapter, nil
}

// missingVars returns the names, in order, whose values are empty.
func missingVars(values map[string]string, names ...string) []string {
	var missing []string
	for _, name := range names {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
