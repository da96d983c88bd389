// This is a mock authentication service that issues JWT tokens for the
// companydesk API, simulating user authentication.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gartstein/companydesk/internal/company/auth"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"
	defaultSecret = "jwt_secret"
	defaultUserID = "12345"
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type tokenIssuer struct {
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

// ServeHTTP issues a token for the user named by the user query parameter.
func (t *tokenIssuer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = defaultUserID
	}

	token, err := auth.GenerateToken(userID, t.secret, t.ttl)
	if err != nil {
		t.logger.Error("Failed to generate token", zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := TokenResponse{Token: token, ExpiresIn: int64(t.ttl.Seconds())}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.logger.Error("Failed to encode token", zap.Error(err))
	}
	t.logger.Info("token issued", zap.String("user_id", userID))
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	issuer, port := newIssuer(logger)
	mux := http.NewServeMux()
	mux.Handle("/token", issuer)

	logger.Info("Authentication service running", zap.String("port", port))
	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("authentication service stopped", zap.Error(err))
	}
}

// newIssuer reads AUTH_PORT, JWT_SECRET and TOKEN_TTL from the environment.
func newIssuer(logger *zap.Logger) (*tokenIssuer, string) {
	port := envOr("AUTH_PORT", defaultPort)
	ttl := auth.DefaultTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Warn("invalid TOKEN_TTL, using default", zap.String("value", v), zap.Error(err))
		} else {
			ttl = d
		}
	}
	return &tokenIssuer{
		secret: envOr("JWT_SECRET", defaultSecret),
		ttl:    ttl,
		logger: logger.Named("token_issuer"),
	}, port
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
