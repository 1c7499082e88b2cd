package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// hopHeaders are connection-scoped and never forwarded in either direction
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder relays requests on the route table to the backend and returns the response as-is
type Forwarder struct {
	router       *Router
	backend      *url.URL
	maxBodyBytes int64
	transport    http.RoundTripper
	logger       *slog.Logger
}

// NewForwarder creates a forwarder for cfg
func NewForwarder(cfg *Config, logger *slog.Logger) (*Forwarder, error) {
	backend, err := cfg.backend()
	if err != nil {
		return nil, err
	}

	routes := cfg.Routes
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Forwarder{
		router:       NewRouter(routes),
		backend:      backend,
		maxBodyBytes: maxBody,
		transport:    http.DefaultTransport,
		logger:       logger,
	}, nil
}

// Matches reports whether path is handled by the forwarder
func (f *Forwarder) Matches(path string) bool {
	_, ok := f.router.Match(path)
	return ok
}

// ServeHTTP resolves the route, forwards the request and copies the response back
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	path := req.URL.EscapedPath()

	route, ok := f.router.Match(path)
	if !ok {
		f.logger.DebugContext(ctx, "gateway: no route for path", "path", path)
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	if req.Method == http.MethodOptions {
		writePreflight(w)
		return
	}

	var body []byte
	if req.Method != http.MethodGet && req.Method != http.MethodHead && req.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, req.Body, f.maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				f.logger.WarnContext(ctx, "gateway: request body too large",
					"path", path,
					"limit", tooLarge.Limit,
				)
				writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			f.logger.WarnContext(ctx, "gateway: failed to read request body", "path", path, "error", err)
			writeJSONError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
	}

	target := f.targetURL(route, path, req.URL.RawQuery)

	f.logger.InfoContext(ctx, "gateway: forwarding request",
		"method", req.Method,
		"path", path,
		"target", target,
		"has_cookie", req.Header.Get("Cookie") != "",
	)

	outReq, err := f.outboundRequest(ctx, req, route, target, body)
	if err != nil {
		f.logger.ErrorContext(ctx, "gateway: failed to build upstream request",
			"target", target,
			"error", err,
		)
		writeJSONError(w, http.StatusInternalServerError, "Failed to proxy request to backend")
		return
	}

	resp, err := f.transport.RoundTrip(outReq)
	if err != nil {
		// Client disconnect is normal; avoid noisy ERROR logs
		if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			f.logger.DebugContext(ctx, "gateway: upstream request canceled by client", "target", target)
		} else {
			f.logger.ErrorContext(ctx, "gateway: upstream request failed",
				"target", target,
				"error", err,
			)
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to proxy request to backend")
		return
	}
	defer resp.Body.Close()

	f.logger.DebugContext(ctx, "gateway: upstream response received",
		"status", resp.StatusCode,
		"target", target,
		"has_set_cookie", resp.Header.Get("Set-Cookie") != "",
		"location", resp.Header.Get("Location"),
	)

	respHeader := resp.Header.Clone()
	removeHopByHop(respHeader)

	h := w.Header()
	for k, vv := range respHeader {
		h[k] = append([]string(nil), vv...)
	}
	applyCORS(h, requestOrigin(req))

	// net/http always writes the canonical reason phrase; a custom upstream status text is lost
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		f.logger.WarnContext(ctx, "gateway: failed to copy response body", "target", target, "error", err)
	}
}

// targetURL joins the backend origin, the rewritten path and the untouched raw query
func (f *Forwarder) targetURL(route Route, path, rawQuery string) string {
	target := strings.TrimRight(f.backend.String(), "/") + route.Target(path)
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

func (f *Forwarder) outboundRequest(ctx context.Context, req *http.Request, route Route, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	outReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}

	outReq.Header = req.Header.Clone()
	if outReq.Header == nil {
		outReq.Header = make(http.Header)
	}
	removeHopByHop(outReq.Header)
	// Recomputed from the buffered body
	outReq.Header.Del("Content-Length")

	if route.JSONAPI {
		outReq.Header.Set("Accept", "application/json")
		outReq.Header.Set("X-Requested-With", "XMLHttpRequest")
	}

	if outReq.Header.Get("X-Forwarded-Host") == "" {
		outReq.Header.Set("X-Forwarded-Host", req.Host)
	}
	outReq.Header.Set("X-Forwarded-Proto", requestScheme(req))
	if clientIP, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		if prior := outReq.Header.Get("X-Forwarded-For"); prior != "" {
			clientIP = prior + ", " + clientIP
		}
		outReq.Header.Set("X-Forwarded-For", clientIP)
	}

	return outReq, nil
}

// removeHopByHop deletes hop-by-hop headers, including any listed in Connection
func removeHopByHop(h http.Header) {
	for _, v := range h["Connection"] {
		for _, name := range strings.Split(v, ",") {
			if name = textproto.TrimString(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, message)
}
