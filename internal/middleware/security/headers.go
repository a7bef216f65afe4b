// Package security sets response headers for the JSON API.
package security

import (
	"net/http"
	"strconv"
	"time"
)

// HeadersConfig lists the headers to send. Empty values are not sent.
type HeadersConfig struct {
	CSP                 string
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	// NoStore adds Cache-Control: no-store.
	NoStore bool

	// HSTSMaxAge is only sent on TLS connections; zero disables it.
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool
}

// DefaultHeadersConfig suits an API that never serves documents.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "no-referrer",
		CrossOriginResource:   "same-site",
		NoStore:               true,
		HSTSMaxAge:            365 * 24 * time.Hour,
		HSTSIncludeSubdomains: true,
	}
}

func (c HeadersConfig) static() [][2]string {
	var out [][2]string
	for _, kv := range [][2]string{
		{"Content-Security-Policy", c.CSP},
		{"X-Frame-Options", c.XFrameOptions},
		{"X-Content-Type-Options", c.XContentTypeOptions},
		{"Referrer-Policy", c.ReferrerPolicy},
		{"Cross-Origin-Resource-Policy", c.CrossOriginResource},
	} {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	if c.NoStore {
		out = append(out, [2]string{"Cache-Control", "no-store"})
	}
	return out
}

func (c HeadersConfig) hsts() string {
	secs := int64(c.HSTSMaxAge / time.Second)
	if secs <= 0 {
		return ""
	}
	v := "max-age=" + strconv.FormatInt(secs, 10)
	if c.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

// Headers returns middleware that writes the configured headers before the
// handler runs.
func Headers(cfg HeadersConfig) func(http.Handler) http.Handler {
	fixed := cfg.static()
	hsts := cfg.hsts()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range fixed {
				h.Set(kv[0], kv[1])
			}
			if hsts != "" && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}
