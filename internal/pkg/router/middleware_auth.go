package router

import (
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

// AuthorizationCookie names the cookie carrying the bearer-wrapped session token.
const AuthorizationCookie = "Authorization"

// publicEndpoints lists routes reachable without a session, by method.
var publicEndpoints = map[string]map[string]struct{}{
	http.MethodGet: {
		"/":       {},
		"/health": {},
	},
	http.MethodPost: {
		"/api/v1/auth/request-otp":    {},
		"/api/v1/auth/login":          {},
		"/api/v1/auth/login-password": {},
		"/api/v1/auth/users":          {},
		"/api/v1/auth/sign-out":       {},
		"/api/v1/auth/dev-token":      {},
	},
}

func isPublic(method, route string) bool {
	_, ok := publicEndpoints[method][route]
	return ok
}

// middlewareAuthentication gates every non-public route on a valid session
// token, read from the Authorization cookie or, failing that, the
// Authorization header. The decoded identity is stored with jwt.SetAuth.
func middlewareAuthentication(codec jwt.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := jwt.VerifyAs[jwt.SessionPayload](codec, bearerFrom(r))
			if err != nil {
				slog.DebugContext(r.Context(), "session rejected", "path", r.URL.Path)
				writeJSON(w, errorResponse{Message: "Unauthorized"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), sess.Identity)))
		})
	}
}

// bearerFrom returns the unwrapped session token or "" when none is present.
func bearerFrom(r *http.Request) string {
	value := r.Header.Get("Authorization")
	if c, err := r.Cookie(AuthorizationCookie); err == nil && c.Value != "" {
		value = c.Value
	}

	token, ok := jwt.UnwrapBearer(value)
	if !ok {
		return ""
	}

	return token
}
