// internal/server/auth.go
//
// Optional HTTP Basic Authentication.
//
// The credential pair comes from AUTH_USERNAME / AUTH_PASSWORD; when
// either is unset, authentication is disabled entirely.  Either value
// may be a `vault:` reference resolved at startup.
package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/martinmares/simple-config-server/internal/vault"
)

// AuthConfig carries the resolved credential pair.  The zero value
// means authentication is disabled.
type AuthConfig struct {
	Required bool
	Username string
	Password string
}

// LoadAuth reads the credential pair from the process environment,
// resolving vault: references when present.
func LoadAuth(ctx context.Context, log *zap.SugaredLogger) (AuthConfig, error) {
	user, userOK := os.LookupEnv("AUTH_USERNAME")
	pass, passOK := os.LookupEnv("AUTH_PASSWORD")
	if !userOK || !passOK {
		log.Warnw("basic auth disabled", "reason", "AUTH_USERNAME / AUTH_PASSWORD not set")
		return AuthConfig{}, nil
	}

	if vault.IsRef(user) || vault.IsRef(pass) {
		cli, err := vault.New(ctx, log)
		if err != nil {
			return AuthConfig{}, err
		}
		if user, err = cli.Resolve(ctx, user); err != nil {
			return AuthConfig{}, err
		}
		if pass, err = cli.Resolve(ctx, pass); err != nil {
			return AuthConfig{}, err
		}
	}

	log.Infow("basic auth enabled", "username", user)
	return AuthConfig{Required: true, Username: user, Password: pass}, nil
}

// requireAuth gates every route when credentials are configured.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.Required {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !credentialsMatch(user, pass, s.auth) {
			w.Header().Set("WWW-Authenticate", `Basic realm="SecureConfigServer"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func credentialsMatch(user, pass string, auth AuthConfig) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(auth.Password)) == 1
	return userOK && passOK
}
