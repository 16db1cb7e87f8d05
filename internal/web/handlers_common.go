package web

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Snapshot listing bounds.
const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
)

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// pageTab reads ?tab= for pages. Anything unparsable selects the first tab;
// the view state clamps values past the end.
func pageTab(r *http.Request) int {
	tab, err := strconv.Atoi(r.URL.Query().Get("tab"))
	if err != nil || tab < 0 {
		return 0
	}
	return tab
}

// pathTab reads the {tab} URL parameter of API routes.
func pathTab(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "tab")
	tab, err := strconv.Atoi(raw)
	if err != nil || tab < 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidTab, raw)
	}
	return tab, nil
}

// readBody reads a request body capped at limit bytes.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// clientIP is the rate limiting key: RemoteAddr without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
