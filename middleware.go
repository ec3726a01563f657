package main

// middleware.go wraps the mux: access gate for the studio, JWT guard for
// admin routes, CORS and request logging

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"

	"github.com/aTrapDeer/portfolio-site/internal/config"
)

const studioRealm = `Basic realm="Sanity Studio", charset="UTF-8"`

// studioGate puts HTTP Basic auth in front of every /studio path. It is a
// no-op in development and, with a warning, when no credentials are set.
func studioGate(cfg *config.Config, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/studio") || cfg.IsDevelopment() {
			next.ServeHTTP(w, r)
			return
		}
		if !cfg.StudioAuthConfigured() {
			logger.Warn("[Security] STUDIO_AUTH_USER/PASS not configured. Studio is publicly accessible!")
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !checkStudioCredentials(cfg, user, pass) {
			w.Header().Set("WWW-Authenticate", studioRealm)
			http.Error(w, "Authentication required for Sanity Studio", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkStudioCredentials compares against the configured pair. A password
// configured as a bcrypt hash is checked as one.
func checkStudioCredentials(cfg *config.Config, user, pass string) bool {
	if !cfg.StudioAuthConfigured() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Studio.User)) == 1
	var passOK bool
	if isBcryptHash(cfg.Studio.Pass) {
		passOK = bcrypt.CompareHashAndPassword([]byte(cfg.Studio.Pass), []byte(pass)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.Studio.Pass)) == 1
	}
	return userOK && passOK
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// requireJWT only lets through requests carrying a valid admin token.
func requireJWT(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			writeError(w, http.StatusServiceUnavailable, "Admin API not configured")
			return
		}
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		token, err := jwt.Parse(bearerToken[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// issueToken signs an admin token valid for 24 hours.
func issueToken(secret, subject string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour * 24).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func withCORS(cfg *config.Config, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.FrontendOrigins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
