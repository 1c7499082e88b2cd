package gateway

import (
	"net/http"
)

const (
	preflightAllowMethods = "GET,POST,PUT,DELETE,OPTIONS,PATCH"
	preflightAllowHeaders = "Content-Type, Authorization, X-CSRF-Token, X-Requested-With, Accept"
	preflightMaxAge       = "86400"

	responseAllowMethods = "GET,DELETE,PATCH,POST,PUT"
	responseAllowHeaders = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version"
)

// writePreflight answers an OPTIONS request without contacting the backend
func writePreflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", preflightAllowMethods)
	h.Set("Access-Control-Allow-Headers", preflightAllowHeaders)
	h.Set("Access-Control-Max-Age", preflightMaxAge)
	w.WriteHeader(http.StatusNoContent)
}

// applyCORS adds the credentialed CORS headers to a relayed response.
// The origin is always a concrete origin; credentialed responses cannot use a wildcard.
func applyCORS(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", responseAllowMethods)
	h.Set("Access-Control-Allow-Headers", responseAllowHeaders)
}

// requestOrigin returns the origin the request was addressed to.
// The Origin header is never echoed; relayed responses carry credentials.
func requestOrigin(req *http.Request) string {
	return requestScheme(req) + "://" + req.Host
}

func requestScheme(req *http.Request) string {
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if req.TLS != nil {
		return "https"
	}
	return "http"
}
