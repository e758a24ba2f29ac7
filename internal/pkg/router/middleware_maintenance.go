package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/easymed/internal/pkg/config"
)

// maintenanceRules holds blocked route patterns. An entry is either a bare
// pattern ("/api/v1/auth/otp/send") or prefixed with a method
// ("POST /api/v1/auth/otp/send").
type maintenanceRules struct {
	any        map[string]struct{}
	byMethod   map[string]struct{}
	retryAfter int
}

func newMaintenanceRules(cfg config.Config) maintenanceRules {
	rules := maintenanceRules{any: map[string]struct{}{}, byMethod: map[string]struct{}{}}
	if cfg == nil {
		return rules
	}

	for _, entry := range cfg.GetArray("app.maintenance.endpoints") {
		if method, path, ok := strings.Cut(entry, " "); ok {
			rules.byMethod[strings.ToUpper(method)+" "+strings.TrimSpace(path)] = struct{}{}
			continue
		}
		rules.any[entry] = struct{}{}
	}
	rules.retryAfter = cfg.GetInt("app.maintenance.retry_after_seconds")

	return rules
}

func (m maintenanceRules) blocked(method, route string) bool {
	if _, ok := m.any[route]; ok {
		return true
	}
	_, ok := m.byMethod[method+" "+route]
	return ok
}

func middlewareMaintenance(cfg config.Config) Middleware {
	rules := newMaintenanceRules(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rules.blocked(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if rules.retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(rules.retryAfter))
			}
			writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
		})
	}
}
