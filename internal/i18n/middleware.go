package i18n

import "net/http"

// Middleware attaches a localizer for the configured language to every
// request. The language is fixed per deployment, so one localizer is built
// up front and shared.
func Middleware(lang string) func(http.Handler) http.Handler {
	loc := NewLocalizer(lang)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
