// FILE: logseer/src/internal/api/auth.go
package api

import (
	"fmt"
	"strings"
	"time"

	"logseer/src/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator validates bearer tokens for the query API. Tokens are
// accepted either as plaintext entries, as bcrypt hashes, or as signed
// JWTs depending on the configured mode.
type Authenticator struct {
	config     *config.APIAuthConfig
	logger     *log.Logger
	tokens     map[string]bool
	hashes     []string
	jwtParser  *jwt.Parser
	jwtKeyFunc jwt.Keyfunc
}

// NewAuthenticator creates an authenticator from config. Returns nil for
// type "none"; callers treat a nil authenticator as open access.
func NewAuthenticator(cfg *config.APIAuthConfig, logger *log.Logger) (*Authenticator, error) {
	if cfg == nil || cfg.Type == "none" {
		return nil, nil
	}

	a := &Authenticator{
		config: cfg,
		logger: logger,
		tokens: make(map[string]bool),
	}

	switch cfg.Type {
	case "bearer":
		for _, token := range cfg.Tokens {
			a.tokens[token] = true
		}
		a.hashes = cfg.TokenHashes
		if len(a.tokens) == 0 && len(a.hashes) == 0 {
			return nil, fmt.Errorf("bearer auth requires tokens or token_hashes")
		}

	case "jwt":
		if cfg.JWTSigningKey == "" {
			return nil, fmt.Errorf("jwt auth requires a signing key")
		}
		a.jwtParser = jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithLeeway(5*time.Second),
			jwt.WithExpirationRequired(),
		)
		key := []byte(cfg.JWTSigningKey)
		a.jwtKeyFunc = func(token *jwt.Token) (any, error) {
			return key, nil
		}

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}

	logger.Info("msg", "API authenticator initialized",
		"component", "api",
		"type", cfg.Type)

	return a, nil
}

// Authenticate validates an Authorization header value
func (a *Authenticator) Authenticate(authHeader string) error {
	if a == nil {
		return nil
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return fmt.Errorf("missing bearer token")
	}

	switch a.config.Type {
	case "bearer":
		return a.checkBearer(token)
	case "jwt":
		return a.checkJWT(token)
	}
	return fmt.Errorf("unknown auth type: %s", a.config.Type)
}

func (a *Authenticator) checkBearer(token string) error {
	if a.tokens[token] {
		return nil
	}
	for _, hash := range a.hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil {
			return nil
		}
	}
	return fmt.Errorf("invalid token")
}

func (a *Authenticator) checkJWT(tokenString string) error {
	token, err := a.jwtParser.Parse(tokenString, a.jwtKeyFunc)
	if err != nil {
		return fmt.Errorf("jwt validation failed: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid jwt")
	}
	return nil
}
