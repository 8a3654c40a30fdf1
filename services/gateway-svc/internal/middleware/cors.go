package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"algolab/pkg/apperror"
	"algolab/pkg/config"
)

// заголовки, которые браузерный клиент должен видеть всегда
var requiredExposedHeaders = []string{
	"X-Request-Id",
	http.CanonicalHeaderKey(apperror.CodeHeader),
	"Content-Disposition",
	"Retry-After",
}

// CORS middleware для ConnectRPC и /v1/export
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	allowedHeaders := prepareAllowedHeaders(cfg.AllowedHeaders)
	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	exposedHeaders := prepareExposedHeaders(cfg.ExposedHeaders)
	maxAge := strconv.Itoa(cfg.MaxAge)
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowedOrigin := ""
			switch {
			case origin == "":
			case slices.Contains(cfg.AllowedOrigins, origin):
				allowedOrigin = origin
			case wildcard && cfg.AllowCredentials:
				// с credentials браузер не принимает "*"
				allowedOrigin = origin
			case wildcard:
				allowedOrigin = "*"
			}

			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Expose-Headers", exposedHeaders)

				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			// Preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowedOrigin == "" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// prepareAllowedHeaders раскрывает wildcard в явный список
func prepareAllowedHeaders(headers []string) string {
	if slices.Contains(headers, "*") {
		return strings.Join([]string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"X-Requested-With",
			"X-Request-Id",
			"X-Grpc-Web",
			"Grpc-Timeout",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"X-User-Agent",
		}, ", ")
	}

	if !containsFold(headers, RequestIDHeader) {
		headers = append(slices.Clone(headers), RequestIDHeader)
	}
	return strings.Join(headers, ", ")
}

func prepareExposedHeaders(headers []string) string {
	out := slices.Clone(headers)
	for _, h := range requiredExposedHeaders {
		if !containsFold(out, h) {
			out = append(out, h)
		}
	}
	return strings.Join(out, ", ")
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}
