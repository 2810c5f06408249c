package fakesearch

import (
	"net/http"
)

// apiKeyMiddleware rejects requests whose api-key header does not match.
// An empty key disables the check.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("api-key")
			if got == "" {
				writeError(w, http.StatusForbidden, "Forbidden", "missing api-key header")
				return
			}
			if got != apiKey {
				writeError(w, http.StatusForbidden, "Forbidden", "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// apiVersionMiddleware requires the api-version query parameter.
func apiVersionMiddleware(version string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("api-version")
			if got == "" {
				writeError(w, http.StatusBadRequest, "MissingApiVersionParameter",
					"the api-version query parameter is required")
				return
			}
			if version != "" && got != version {
				writeError(w, http.StatusBadRequest, "InvalidApiVersionParameter",
					"unsupported api-version "+got)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
