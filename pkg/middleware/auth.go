package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"miniblog/pkg/session"

	"go.uber.org/zap"
)

// LoginPath is where unauthenticated requests to protected routes are sent.
const LoginPath = "/api/login"

var protected = []struct {
	method string
	prefix string
}{
	{http.MethodPost, "/api/posts"},
	{http.MethodPost, "/api/post/"},
	{http.MethodPut, "/api/post/"},
	{http.MethodDelete, "/api/post/"},
	{http.MethodDelete, "/api/account"},
	{http.MethodPut, "/api/profile"},
	{http.MethodPost, "/api/categories"},
	{http.MethodDelete, "/api/category/"},
	{http.MethodPost, "/api/locations"},
	{http.MethodDelete, "/api/location/"},
}

func requiresAuth(r *http.Request) bool {
	for _, p := range protected {
		if r.Method == p.method && strings.HasPrefix(r.URL.Path, p.prefix) {
			return true
		}
	}

	return false
}

// Auth attaches the session to the request context whenever a valid token is
// present, so read handlers know the viewer even on public routes. Protected
// routes without a session are redirected to the login endpoint.
func Auth(logger *zap.SugaredLogger, sm session.SessionManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		sess, err := sm.Check(ctx, r)
		if err == nil {
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), session.SessionKey, sess)))
			return
		}

		if requiresAuth(r) {
			logger.Infof("unauthenticated %s %s: %s", r.Method, r.URL.Path, err.Error())
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}
