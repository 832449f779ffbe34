package httpx

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS allows the browser front end at origins to call the API with
// credentials (the session cookie). Browsers refuse credentials on a
// wildcard origin, so "*" opens the API to any origin without them.
func CORS(origins []string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	})
}
