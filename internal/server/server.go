// internal/server/server.go
//
// Admin/health surface.
//
// Context
// -------
// A thin read-and-revalidate API over the validated configuration; the
// full editing panel lives elsewhere.  Routes:
//
//   - GET  /healthz                – liveness probe
//   - GET  /metrics                – Prometheus instruments
//   - GET  /api/config             – current document, secrets redacted
//   - POST /api/config/revalidate  – re-run repair + validation after an
//     external edit or restore; responds with the maintenance summary
//
// The *http.Server carries slow-loris/read/idle timeouts so the admin
// port is safe to expose on a LAN.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mediawall/mediawall/internal/config"
)

// New constructs the admin server with routing, middleware, and timeouts.
func New(addr string, mgr *config.Manager, log *zap.SugaredLogger) *http.Server {
	r := chi.NewRouter()
	r.Use(Security)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/config", func(w http.ResponseWriter, _ *http.Request) {
		// Snapshot, not the live tree: a concurrent revalidate mutates
		// the document while this walk runs.
		writeJSON(w, http.StatusOK, Redact(mgr.Snapshot()))
	})

	r.Post("/api/config/revalidate", func(w http.ResponseWriter, _ *http.Request) {
		rep, ok := mgr.Revalidate()
		status := http.StatusOK
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		log.Infow("revalidate requested", "valid", ok, "summary", rep.Summary())
		writeJSON(w, status, map[string]any{
			"valid":          ok,
			"migrations":     rep.Migrations,
			"repairs":        rep.Repairs,
			"removedUnknown": rep.RemovedUnknown,
			"saveErrors":     rep.SaveErrors,
			"notes":          rep.Notes,
		})
	})

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Redact deep-copies a document tree, masking values under secret-bearing
// keys (token, apiKey, password…) so the config API never leaks them.
func Redact(root map[string]any) map[string]any {
	out, _ := redactValue(root).(map[string]any)
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if secretKey(k) {
				if s, ok := e.(string); ok && s != "" {
					out[k] = "••••••"
					continue
				}
			}
			out[k] = redactValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = redactValue(e)
		}
		return out
	default:
		return v
	}
}

func secretKey(k string) bool {
	lk := strings.ToLower(k)
	return lk == "token" || lk == "apikey" || strings.HasPrefix(lk, "password")
}
