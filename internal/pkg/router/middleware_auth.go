package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shandysiswandi/easymed/internal/pkg/jwt"
)

var errMissingBearer = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingBearer
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, message, challenge string) {
	w.Header().Set("WWW-Authenticate", challenge)
	writeJSON(w, errorResponse{Message: message}, http.StatusUnauthorized)
}

// middlewareAuthentication puts verified claims into the request context.
// Routes listed in publicEndpoints pass through without a token.
func middlewareAuthentication(verifier jwt.JWT, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, public := publicEndpoints[r.Method][matchedRoutePath(r)]; public {
				next.ServeHTTP(w, r)
				return
			}

			token, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, "Authentication required", `Bearer realm="easymed"`)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token", `Bearer realm="easymed", error="invalid_token"`)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
