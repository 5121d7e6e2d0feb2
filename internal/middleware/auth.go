package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/config"
	"skyatlas/airports/internal/constants"
	reqctx "skyatlas/airports/internal/context"
	"skyatlas/airports/internal/logging"
)

// APIKeyMiddleware admits requests carrying one of the configured API keys in
// the x-api-key header or the apiKey query parameter.
func APIKeyMiddleware(validKeys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := extractAPIKey(r)
			if apiKey == "" {
				common.RespondError(w, http.StatusUnauthorized, constants.MsgAPIKeyRequired)
				return
			}
			if !keyAllowed(apiKey, validKeys) {
				common.RespondError(w, http.StatusUnauthorized, constants.MsgInvalidAPIKey)
				return
			}

			ctx := reqctx.SetPrincipal(r.Context(), reqctx.Principal{Method: "api_key"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware guards the admin routes. It accepts an admin API key, or a
// bearer token signed by signer with the admin role. When neither admin keys
// nor a signer are configured the regular API keys are accepted instead.
func AdminMiddleware(cfg config.AuthConfig, signer *common.AdminTokenSigner) func(http.Handler) http.Handler {
	adminKeys := cfg.AdminAPIKeys
	elevated := len(adminKeys) > 0 || signer != nil
	if !elevated {
		logging.Warn("No admin credentials configured, admin routes accept regular API keys")
		adminKeys = cfg.ValidAPIKeys
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearer, ok := bearerToken(r); ok && signer != nil {
				claims, err := signer.Validate(bearer)
				if err != nil {
					logging.Warn("Rejected admin token",
						"request_id", reqctx.GetRequestID(r.Context()), "error", err.Error())
					common.RespondError(w, http.StatusUnauthorized, constants.MsgInvalidAdminToken)
					return
				}
				ctx := reqctx.SetPrincipal(r.Context(), reqctx.Principal{Subject: claims.Subject, Method: "bearer", Admin: true})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			apiKey := extractAPIKey(r)
			switch {
			case apiKey == "" && elevated:
				common.RespondError(w, http.StatusUnauthorized, constants.MsgAdminRequired)
				return
			case apiKey == "":
				common.RespondError(w, http.StatusUnauthorized, constants.MsgAPIKeyRequired)
				return
			case !keyAllowed(apiKey, adminKeys):
				msg := constants.MsgInvalidAPIKey
				if elevated {
					msg = constants.MsgAdminRequired
				}
				common.RespondError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := reqctx.SetPrincipal(r.Context(), reqctx.Principal{Method: "api_key", Admin: true})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get(constants.HeaderAPIKey); key != "" {
		return key
	}
	return r.URL.Query().Get(constants.QueryAPIKey)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get(constants.HeaderAuthorization)
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// keyAllowed checks candidate against every key in constant time.
func keyAllowed(candidate string, keys []string) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare([]byte(candidate), []byte(k))
	}
	return found == 1
}
